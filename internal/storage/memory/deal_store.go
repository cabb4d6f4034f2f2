package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/storage"
)

// DealStore is an in-memory implementation of storage.DealStore.
type DealStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Deal // keyed by deal_id
}

// NewDealStore creates a new in-memory deal store.
func NewDealStore() *DealStore {
	return &DealStore{data: make(map[string]*domain.Deal)}
}

// Compile-time interface check.
var _ storage.DealStore = (*DealStore)(nil)

// Insert adds a new deal. Returns ErrDuplicateKey if deal_id exists.
func (s *DealStore) Insert(_ context.Context, d *domain.Deal) error {
	if d == nil || d.DealID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[d.DealID]; exists {
		return storage.ErrDuplicateKey
	}

	stored := *d
	if stored.CreatedAt == 0 {
		stored.CreatedAt = time.Now().UnixMilli()
	}
	s.data[d.DealID] = &stored
	return nil
}

// GetByID retrieves a deal by its ID. Returns ErrNotFound if not exists.
func (s *DealStore) GetByID(_ context.Context, dealID string) (*domain.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.data[dealID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	result := *d
	return &result, nil
}

// List retrieves all deals, ordered by created_at ASC, deal_id ASC.
func (s *DealStore) List(_ context.Context) ([]*domain.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deals := make([]*domain.Deal, 0, len(s.data))
	for _, d := range s.data {
		result := *d
		deals = append(deals, &result)
	}
	sort.Slice(deals, func(i, j int) bool {
		if deals[i].CreatedAt != deals[j].CreatedAt {
			return deals[i].CreatedAt < deals[j].CreatedAt
		}
		return deals[i].DealID < deals[j].DealID
	})
	return deals, nil
}
