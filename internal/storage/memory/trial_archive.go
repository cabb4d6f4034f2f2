package memory

import (
	"context"
	"sort"
	"sync"

	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/storage"
)

// TrialArchive is an in-memory implementation of storage.TrialArchive.
type TrialArchive struct {
	mu   sync.RWMutex
	data map[string][]*domain.TrialRecord // keyed by run_id
}

// NewTrialArchive creates a new in-memory trial archive.
func NewTrialArchive() *TrialArchive {
	return &TrialArchive{data: make(map[string][]*domain.TrialRecord)}
}

// Compile-time interface check.
var _ storage.TrialArchive = (*TrialArchive)(nil)

// InsertBulk adds multiple trial records.
func (a *TrialArchive) InsertBulk(_ context.Context, trials []*domain.TrialRecord) error {
	if len(trials) == 0 {
		return nil
	}
	for _, t := range trials {
		if t == nil || t.RunID == "" {
			return storage.ErrInvalidInput
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, t := range trials {
		stored := *t
		a.data[t.RunID] = append(a.data[t.RunID], &stored)
	}
	return nil
}

// GetByRunID retrieves all trials for a run, ordered by trial_index ASC.
func (a *TrialArchive) GetByRunID(_ context.Context, runID string) ([]*domain.TrialRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stored := a.data[runID]
	trials := make([]*domain.TrialRecord, 0, len(stored))
	for _, t := range stored {
		result := *t
		trials = append(trials, &result)
	}
	sort.Slice(trials, func(i, j int) bool {
		return trials[i].TrialIndex < trials[j].TrialIndex
	})
	return trials, nil
}
