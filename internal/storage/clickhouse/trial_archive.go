package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/storage"
)

// TrialArchive implements storage.TrialArchive using ClickHouse.
// Trial rows are append-only analytical data; MergeTree does not
// enforce uniqueness and the archive does not need it, since a run_id
// is only ever written once.
type TrialArchive struct {
	conn *Conn
}

// NewTrialArchive creates a new TrialArchive.
func NewTrialArchive(conn *Conn) *TrialArchive {
	return &TrialArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.TrialArchive = (*TrialArchive)(nil)

// InsertBulk adds multiple trial records in one batch.
func (a *TrialArchive) InsertBulk(ctx context.Context, trials []*domain.TrialRecord) error {
	if len(trials) == 0 {
		return nil
	}
	for _, t := range trials {
		if t == nil || t.RunID == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO simulation_trials (
			run_id, trial_index, irr, irr_resolved, sale_proceeds
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range trials {
		resolved := uint8(0)
		if t.IRRResolved {
			resolved = 1
		}
		err = batch.Append(
			t.RunID, uint32(t.TrialIndex), t.IRR, resolved, t.SaleProceeds,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves all trials for a run, ordered by trial_index ASC.
func (a *TrialArchive) GetByRunID(ctx context.Context, runID string) ([]*domain.TrialRecord, error) {
	query := `
		SELECT run_id, trial_index, irr, irr_resolved, sale_proceeds
		FROM simulation_trials
		WHERE run_id = ?
		ORDER BY trial_index ASC
	`

	rows, err := a.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query trials by run id: %w", err)
	}
	defer rows.Close()

	return scanTrials(rows)
}

func scanTrials(rows driver.Rows) ([]*domain.TrialRecord, error) {
	var trials []*domain.TrialRecord
	for rows.Next() {
		var (
			t          domain.TrialRecord
			trialIndex uint32
			resolved   uint8
		)
		if err := rows.Scan(&t.RunID, &trialIndex, &t.IRR, &resolved, &t.SaleProceeds); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		t.TrialIndex = int(trialIndex)
		t.IRRResolved = resolved == 1
		trials = append(trials, &t)
	}
	return trials, rows.Err()
}
