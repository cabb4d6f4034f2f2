package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a run summary. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.RunSummary) error {
	if r == nil || r.RunID == "" || r.DealID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO simulation_runs (
			run_id, deal_id, seed, runs, horizon_years, exit_method,
			irr_resolved, irr_mean, irr_p10, irr_p50, irr_p90,
			proceeds_p10, proceeds_p50, proceeds_p90, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID,
		r.DealID,
		r.Seed,
		r.Result.Runs,
		r.Result.HorizonYears,
		r.Result.ExitMethod,
		r.Result.IRRResolved,
		r.Result.IRRMean,
		r.Result.IRRP10,
		r.Result.IRRP50,
		r.Result.IRRP90,
		r.Result.ProceedsP10,
		r.Result.ProceedsP50,
		r.Result.ProceedsP90,
		r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run summary: %w", err)
	}
	return nil
}

// GetByID retrieves a run summary. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.RunSummary, error) {
	query := selectRuns + ` WHERE run_id = $1`

	row := s.pool.QueryRow(ctx, query, runID)
	r, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return r, nil
}

// GetByDealID retrieves all run summaries for a deal, ordered by
// created_at ASC, run_id ASC.
func (s *RunStore) GetByDealID(ctx context.Context, dealID string) ([]*domain.RunSummary, error) {
	query := selectRuns + ` WHERE deal_id = $1 ORDER BY created_at ASC, run_id ASC`

	rows, err := s.pool.Query(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("get runs by deal id: %w", err)
	}
	defer rows.Close()

	var runs []*domain.RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run summary: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

const selectRuns = `
	SELECT run_id, deal_id, seed, runs, horizon_years, exit_method,
		irr_resolved, irr_mean, irr_p10, irr_p50, irr_p90,
		proceeds_p10, proceeds_p50, proceeds_p90, created_at
	FROM simulation_runs
`

func scanRun(row pgx.Row) (*domain.RunSummary, error) {
	var r domain.RunSummary
	err := row.Scan(
		&r.RunID,
		&r.DealID,
		&r.Seed,
		&r.Result.Runs,
		&r.Result.HorizonYears,
		&r.Result.ExitMethod,
		&r.Result.IRRResolved,
		&r.Result.IRRMean,
		&r.Result.IRRP10,
		&r.Result.IRRP50,
		&r.Result.IRRP90,
		&r.Result.ProceedsP10,
		&r.Result.ProceedsP50,
		&r.Result.ProceedsP90,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
