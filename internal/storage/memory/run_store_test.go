package memory

import (
	"context"
	"errors"
	"testing"

	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/storage"
)

func TestRunStore_InsertAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	r := &domain.RunSummary{
		RunID:  "run-001",
		DealID: "deal-001",
		Seed:   42,
		Result: domain.SimResult{
			Runs:         5000,
			HorizonYears: 10,
			ExitMethod:   domain.ExitMethodAppreciation,
			IRRResolved:  4980,
			IRRMean:      0.092,
		},
		CreatedAt: 1704067200000,
	}

	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "run-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.DealID != "deal-001" {
		t.Errorf("DealID mismatch: got %s", got.DealID)
	}
	if got.Result.IRRMean != 0.092 {
		t.Errorf("IRRMean mismatch: got %f", got.Result.IRRMean)
	}
	if got.Result.Runs != 5000 {
		t.Errorf("Runs mismatch: got %d", got.Result.Runs)
	}
}

func TestRunStore_DuplicateKey(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	r := &domain.RunSummary{RunID: "run-dup", DealID: "deal-001"}

	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}
	if err := store.Insert(ctx, r); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestRunStore_NotFound(t *testing.T) {
	store := NewRunStore()

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRunStore_InvalidInput(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil run, got %v", err)
	}
	if err := store.Insert(ctx, &domain.RunSummary{RunID: "x"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty deal_id, got %v", err)
	}
}

func TestRunStore_GetByDealIDOrdered(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	store.Insert(ctx, &domain.RunSummary{RunID: "r3", DealID: "deal-A", CreatedAt: 300})
	store.Insert(ctx, &domain.RunSummary{RunID: "r1", DealID: "deal-A", CreatedAt: 100})
	store.Insert(ctx, &domain.RunSummary{RunID: "r2", DealID: "deal-B", CreatedAt: 200})

	runs, err := store.GetByDealID(ctx, "deal-A")
	if err != nil {
		t.Fatalf("GetByDealID failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs for deal-A, got %d", len(runs))
	}
	if runs[0].RunID != "r1" || runs[1].RunID != "r3" {
		t.Errorf("unexpected order: %s %s", runs[0].RunID, runs[1].RunID)
	}
}

func TestRunStore_GetByDealIDEmpty(t *testing.T) {
	store := NewRunStore()

	runs, err := store.GetByDealID(context.Background(), "no-such-deal")
	if err != nil {
		t.Fatalf("GetByDealID failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty result, got %d runs", len(runs))
	}
}
