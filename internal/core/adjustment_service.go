package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultHistoryLimit = 100

// RecordAdjustmentInput describes one quantity change to append to the log.
type RecordAdjustmentInput struct {
	StoreID        string
	ItemID         string
	LocationID     string
	Type           AdjustmentType
	QuantityBefore int64
	QuantityAfter  int64
	Reason         string
	Reference      *string
	Notes          *string
	ActorID        *string
}

// AdjustmentService is the append-only audit trail of quantity changes.
// Nothing in this module ever updates or deletes a stock_adjustments row.
type AdjustmentService interface {
	// Record appends one adjustment in its own transaction.
	Record(ctx context.Context, in RecordAdjustmentInput) (*Adjustment, error)

	// RecordTx appends one adjustment within the caller's transaction.
	// Used by StockService.SetStock to keep the stock write and its audit
	// record atomic.
	RecordTx(ctx context.Context, tx pgx.Tx, in RecordAdjustmentInput) (*Adjustment, error)

	// History returns adjustments for an item, newest first, optionally
	// filtered by location. limit <= 0 applies the default page size.
	History(ctx context.Context, itemID string, locationID *string, limit int) ([]Adjustment, error)
}

type adjustmentService struct {
	pool *pgxpool.Pool
}

// NewAdjustmentService constructs an AdjustmentService backed by PostgreSQL.
func NewAdjustmentService(pool *pgxpool.Pool) AdjustmentService {
	return &adjustmentService{pool: pool}
}

func (s *adjustmentService) Record(ctx context.Context, in RecordAdjustmentInput) (*Adjustment, error) {
	return s.record(ctx, s.pool, in)
}

func (s *adjustmentService) RecordTx(ctx context.Context, tx pgx.Tx, in RecordAdjustmentInput) (*Adjustment, error) {
	return s.record(ctx, tx, in)
}

func (s *adjustmentService) record(ctx context.Context, q querier, in RecordAdjustmentInput) (*Adjustment, error) {
	if in.StoreID == "" || in.ItemID == "" || in.LocationID == "" {
		return nil, validationf("store, item, and location ids are required")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, validationf("adjustment reason must not be empty")
	}
	if in.Type == "" {
		in.Type = AdjustmentTypeAdjustment
	}
	if !validAdjustmentType(in.Type) {
		return nil, validationf("unknown adjustment type %q", in.Type)
	}

	adj := Adjustment{
		ID:             uuid.NewString(),
		StoreID:        in.StoreID,
		ItemID:         in.ItemID,
		LocationID:     in.LocationID,
		Type:           in.Type,
		QuantityBefore: in.QuantityBefore,
		QuantityAfter:  in.QuantityAfter,
		QuantityChange: in.QuantityAfter - in.QuantityBefore,
		Reason:         in.Reason,
		Reference:      in.Reference,
		Notes:          in.Notes,
		ActorID:        in.ActorID,
	}

	// clock_timestamp(), not NOW(): NOW() is transaction-start time, which
	// would let a writer serialized *after* another carry an earlier
	// created_at and break newest-first history ordering.
	err := q.QueryRow(ctx, `
		INSERT INTO stock_adjustments
			(id, store_id, item_id, location_id, type, quantity_before, quantity_after, quantity_change, reason, reference, notes, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, clock_timestamp())
		RETURNING created_at
	`, adj.ID, adj.StoreID, adj.ItemID, adj.LocationID, adj.Type,
		adj.QuantityBefore, adj.QuantityAfter, adj.QuantityChange,
		adj.Reason, adj.Reference, adj.Notes, adj.ActorID,
	).Scan(&adj.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append adjustment for item %s: %w", in.ItemID, classifyStorageErr(err))
	}
	return &adj, nil
}

func (s *adjustmentService) History(ctx context.Context, itemID string, locationID *string, limit int) ([]Adjustment, error) {
	if itemID == "" {
		return nil, validationf("item id is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	query := `
		SELECT id, store_id, item_id, location_id, type, quantity_before, quantity_after, quantity_change, reason, reference, notes, actor_id, created_at
		FROM stock_adjustments
		WHERE item_id = $1`
	args := []any{itemID}
	if locationID != nil {
		query += ` AND location_id = $2`
		args = append(args, *locationID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT %d`, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query adjustment history: %w", classifyStorageErr(err))
	}
	defer rows.Close()

	var history []Adjustment
	for rows.Next() {
		var a Adjustment
		if err := rows.Scan(&a.ID, &a.StoreID, &a.ItemID, &a.LocationID, &a.Type,
			&a.QuantityBefore, &a.QuantityAfter, &a.QuantityChange,
			&a.Reason, &a.Reference, &a.Notes, &a.ActorID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		history = append(history, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating adjustments: %w", classifyStorageErr(err))
	}
	return history, nil
}
