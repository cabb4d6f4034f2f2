package storage

import (
	"context"

	"property-deal-lab/internal/domain"
)

// DealStore provides access to deal storage. Deal records are the only
// input the engine consumes; derived results are recomputed, never
// read back from here.
type DealStore interface {
	// Insert adds a new deal. Returns ErrDuplicateKey if deal_id exists.
	Insert(ctx context.Context, d *domain.Deal) error

	// GetByID retrieves a deal by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, dealID string) (*domain.Deal, error)

	// List retrieves all deals, ordered by created_at ASC, deal_id ASC.
	List(ctx context.Context) ([]*domain.Deal, error)
}

// RunStore provides access to simulation run summaries.
type RunStore interface {
	// Insert adds a run summary. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RunSummary) error

	// GetByID retrieves a run summary. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunSummary, error)

	// GetByDealID retrieves all run summaries for a deal, ordered by
	// created_at ASC, run_id ASC.
	GetByDealID(ctx context.Context, dealID string) ([]*domain.RunSummary, error)
}

// TrialArchive provides bulk access to per-trial simulation outcomes,
// kept for offline distribution analysis.
type TrialArchive interface {
	// InsertBulk adds multiple trial records.
	InsertBulk(ctx context.Context, trials []*domain.TrialRecord) error

	// GetByRunID retrieves all trials for a run, ordered by trial_index ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.TrialRecord, error)
}

// ResultCache caches rendered simulation results keyed by a
// deal/config hash, so repeated identical requests skip the engine.
type ResultCache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a value under key.
	Set(ctx context.Context, key, value string) error
}
