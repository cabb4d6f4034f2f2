package memory

import (
	"context"
	"errors"
	"testing"

	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/storage"
)

func TestTrialArchive_InsertBulkAndGet(t *testing.T) {
	archive := NewTrialArchive()
	ctx := context.Background()

	trials := []*domain.TrialRecord{
		{RunID: "run-001", TrialIndex: 0, IRR: 0.08, IRRResolved: true, SaleProceeds: 120000},
		{RunID: "run-001", TrialIndex: 1, IRR: 0.11, IRRResolved: true, SaleProceeds: 145000},
		{RunID: "run-001", TrialIndex: 2, IRRResolved: false, SaleProceeds: -5000},
	}

	if err := archive.InsertBulk(ctx, trials); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := archive.GetByRunID(ctx, "run-001")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(got))
	}
	if got[1].IRR != 0.11 {
		t.Errorf("IRR mismatch: got %f", got[1].IRR)
	}
	if got[2].IRRResolved {
		t.Error("expected trial 2 unresolved")
	}
}

func TestTrialArchive_OrderedByTrialIndex(t *testing.T) {
	archive := NewTrialArchive()
	ctx := context.Background()

	archive.InsertBulk(ctx, []*domain.TrialRecord{
		{RunID: "run-ord", TrialIndex: 2},
		{RunID: "run-ord", TrialIndex: 0},
	})
	archive.InsertBulk(ctx, []*domain.TrialRecord{
		{RunID: "run-ord", TrialIndex: 1},
	})

	got, _ := archive.GetByRunID(ctx, "run-ord")
	for i, tr := range got {
		if tr.TrialIndex != i {
			t.Fatalf("position %d: expected index %d, got %d", i, i, tr.TrialIndex)
		}
	}
}

func TestTrialArchive_EmptyBulkIsNoop(t *testing.T) {
	archive := NewTrialArchive()

	if err := archive.InsertBulk(context.Background(), nil); err != nil {
		t.Errorf("expected nil error for empty bulk, got %v", err)
	}
}

func TestTrialArchive_InvalidInput(t *testing.T) {
	archive := NewTrialArchive()
	ctx := context.Background()

	err := archive.InsertBulk(ctx, []*domain.TrialRecord{{RunID: ""}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing run_id, got %v", err)
	}
}

func TestTrialArchive_UnknownRunIsEmpty(t *testing.T) {
	archive := NewTrialArchive()

	got, err := archive.GetByRunID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d trials", len(got))
	}
}
