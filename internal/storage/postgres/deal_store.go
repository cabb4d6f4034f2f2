package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"property-deal-lab/internal/domain"
	"property-deal-lab/internal/storage"
)

// DealStore implements storage.DealStore using PostgreSQL.
// The parameter snapshot is stored as a JSONB document; the engine only
// ever reads it back whole.
type DealStore struct {
	pool *Pool
}

// NewDealStore creates a new DealStore.
func NewDealStore(pool *Pool) *DealStore {
	return &DealStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DealStore = (*DealStore)(nil)

// Insert adds a new deal. Returns ErrDuplicateKey if deal_id exists.
func (s *DealStore) Insert(ctx context.Context, d *domain.Deal) error {
	if d == nil || d.DealID == "" {
		return storage.ErrInvalidInput
	}

	params, err := json.Marshal(d.Params)
	if err != nil {
		return fmt.Errorf("marshal deal params: %w", err)
	}

	query := `
		INSERT INTO deals (deal_id, name, address, params, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = s.pool.Exec(ctx, query,
		d.DealID,
		d.Name,
		d.Address,
		params,
		d.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert deal: %w", err)
	}
	return nil
}

// GetByID retrieves a deal by its ID. Returns ErrNotFound if not exists.
func (s *DealStore) GetByID(ctx context.Context, dealID string) (*domain.Deal, error) {
	query := `
		SELECT deal_id, name, address, params, created_at
		FROM deals
		WHERE deal_id = $1
	`

	row := s.pool.QueryRow(ctx, query, dealID)
	d, err := scanDeal(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get deal by id: %w", err)
	}
	return d, nil
}

// List retrieves all deals, ordered by created_at ASC, deal_id ASC.
func (s *DealStore) List(ctx context.Context) ([]*domain.Deal, error) {
	query := `
		SELECT deal_id, name, address, params, created_at
		FROM deals
		ORDER BY created_at ASC, deal_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	var deals []*domain.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func scanDeal(row pgx.Row) (*domain.Deal, error) {
	var d domain.Deal
	var params []byte
	if err := row.Scan(&d.DealID, &d.Name, &d.Address, &params, &d.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(params, &d.Params); err != nil {
		return nil, fmt.Errorf("unmarshal deal params: %w", err)
	}
	return &d, nil
}
