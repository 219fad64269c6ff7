package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SetStockInput describes one quantity write against a stock record.
// NewCommitted is optional; nil leaves the committed quantity untouched.
type SetStockInput struct {
	RecordID     string
	NewOnHand    int64
	NewCommitted *int64
	Type         AdjustmentType // defaults to "adjustment"
	Reason       string
	Reference    *string
	Notes        *string
	ActorID      *string
}

// AppliedChange reports the outcome of a SetStock call. AdjustmentID is nil
// when the write was a no-op (on-hand unchanged, no audit row written).
// Totals carries the refreshed item rollups so optimistic caches can
// reconcile against the committed state.
type AppliedChange struct {
	Record         StockRecord
	QuantityBefore int64
	QuantityAfter  int64
	QuantityChange int64
	AdjustmentID   *string
	Totals         ItemTotals
}

// StockService is the per-location quantity store and the exclusive mutation
// point for on-hand/committed/unavailable quantities.
type StockService interface {
	// GetStock returns an item's stock records joined with location metadata,
	// deduplicated to one entry per (item, location) by latest updated_at.
	GetStock(ctx context.Context, itemID string) ([]StockEntry, error)

	// AddLocationToItem creates a zeroed stock record for the pair if none
	// exists. The bool reports whether a record was created; false with a
	// non-nil record means the pair already existed, which is not an error.
	AddLocationToItem(ctx context.Context, itemID, locationID, storeID string) (*StockRecord, bool, error)

	// SetStock applies one quantity write as a single atomic unit:
	// read current → write new quantities → append exactly one adjustment if
	// on-hand changed → recompute the item's totals. Mutation of one record
	// is serialized via a row lock, so two concurrent calls can never record
	// a stale quantity_before.
	SetStock(ctx context.Context, in SetStockInput) (*AppliedChange, error)
}

type stockService struct {
	pool        *pgxpool.Pool
	adjustments AdjustmentService
	totals      TotalsService
}

// NewStockService constructs a StockService backed by PostgreSQL.
func NewStockService(pool *pgxpool.Pool, adjustments AdjustmentService, totals TotalsService) StockService {
	return &stockService{pool: pool, adjustments: adjustments, totals: totals}
}

func (s *stockService) GetStock(ctx context.Context, itemID string) ([]StockEntry, error) {
	if itemID == "" {
		return nil, validationf("item id is required")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.store_id, r.item_id, r.location_id,
		       r.on_hand, r.committed, r.unavailable, r.updated_at,
		       l.id, l.store_id, l.name, l.type, l.is_default, l.is_active,
		       l.fulfills_online_orders, l.address, l.created_at, l.updated_at
		FROM stock_records r
		JOIN locations l ON l.id = r.location_id
		WHERE r.item_id = $1
		ORDER BY l.name, r.updated_at DESC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock for item %s: %w", itemID, classifyStorageErr(err))
	}
	defer rows.Close()

	var entries []StockEntry
	for rows.Next() {
		var e StockEntry
		if err := rows.Scan(
			&e.Record.ID, &e.Record.StoreID, &e.Record.ItemID, &e.Record.LocationID,
			&e.Record.OnHand, &e.Record.Committed, &e.Record.Unavailable, &e.Record.UpdatedAt,
			&e.Location.ID, &e.Location.StoreID, &e.Location.Name, &e.Location.Type,
			&e.Location.IsDefault, &e.Location.IsActive, &e.Location.FulfillsOnlineOrders,
			&e.Location.Address, &e.Location.CreatedAt, &e.Location.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock entries: %w", classifyStorageErr(err))
	}

	// Compatibility shim for stores migrated with duplicate rows.
	return DedupeEntries(entries), nil
}

func (s *stockService) AddLocationToItem(ctx context.Context, itemID, locationID, storeID string) (*StockRecord, bool, error) {
	if itemID == "" || locationID == "" || storeID == "" {
		return nil, false, validationf("item, location, and store ids are required")
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM locations WHERE id = $1 AND store_id = $2)",
		locationID, storeID,
	).Scan(&exists); err != nil {
		return nil, false, fmt.Errorf("failed to check location %s: %w", locationID, classifyStorageErr(err))
	}
	if !exists {
		return nil, false, notFoundf("location %s for store %s", locationID, storeID)
	}

	rec := StockRecord{
		ID:         uuid.NewString(),
		StoreID:    storeID,
		ItemID:     itemID,
		LocationID: locationID,
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO stock_records (id, store_id, item_id, location_id, on_hand, committed, unavailable, updated_at)
		VALUES ($1, $2, $3, $4, 0, 0, 0, NOW())
		ON CONFLICT (item_id, location_id) DO NOTHING
		RETURNING updated_at
	`, rec.ID, rec.StoreID, rec.ItemID, rec.LocationID).Scan(&rec.UpdatedAt)
	if err == nil {
		return &rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create stock record: %w", classifyStorageErr(err))
	}

	// Pair already tracked — return the existing record untouched.
	var existing StockRecord
	err = s.pool.QueryRow(ctx, `
		SELECT id, store_id, item_id, location_id, on_hand, committed, unavailable, updated_at
		FROM stock_records
		WHERE item_id = $1 AND location_id = $2
		ORDER BY updated_at DESC
		LIMIT 1
	`, itemID, locationID).Scan(
		&existing.ID, &existing.StoreID, &existing.ItemID, &existing.LocationID,
		&existing.OnHand, &existing.Committed, &existing.Unavailable, &existing.UpdatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch existing stock record: %w", classifyStorageErr(err))
	}
	return &existing, false, nil
}

func (s *stockService) SetStock(ctx context.Context, in SetStockInput) (*AppliedChange, error) {
	if in.RecordID == "" {
		return nil, validationf("stock record id is required")
	}
	// Rejecting (not clamping) negatives preserves the audit trail's meaning.
	if in.NewOnHand < 0 {
		return nil, validationf("on-hand quantity must not be negative, got %d", in.NewOnHand)
	}
	if in.NewCommitted != nil && *in.NewCommitted < 0 {
		return nil, validationf("committed quantity must not be negative, got %d", *in.NewCommitted)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, validationf("a reason is required for stock changes")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", classifyStorageErr(err))
	}
	defer tx.Rollback(ctx)

	// Row lock serializes concurrent writers on this record for the duration
	// of the transaction, so quantity_before can never be stale.
	var rec StockRecord
	err = tx.QueryRow(ctx, `
		SELECT id, store_id, item_id, location_id, on_hand, committed, unavailable, updated_at
		FROM stock_records
		WHERE id = $1
		FOR UPDATE
	`, in.RecordID).Scan(
		&rec.ID, &rec.StoreID, &rec.ItemID, &rec.LocationID,
		&rec.OnHand, &rec.Committed, &rec.Unavailable, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("stock record %s", in.RecordID)
		}
		return nil, fmt.Errorf("failed to lock stock record %s: %w", in.RecordID, classifyStorageErr(err))
	}

	before := rec.OnHand
	newCommitted := rec.Committed
	if in.NewCommitted != nil {
		newCommitted = *in.NewCommitted
	}

	err = tx.QueryRow(ctx, `
		UPDATE stock_records
		SET on_hand = $1, committed = $2, updated_at = clock_timestamp()
		WHERE id = $3
		RETURNING updated_at
	`, in.NewOnHand, newCommitted, rec.ID).Scan(&rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update stock record %s: %w", rec.ID, classifyStorageErr(err))
	}
	rec.OnHand = in.NewOnHand
	rec.Committed = newCommitted

	change := &AppliedChange{
		Record:         rec,
		QuantityBefore: before,
		QuantityAfter:  in.NewOnHand,
		QuantityChange: in.NewOnHand - before,
	}

	// A no-op on-hand write produces zero adjustments.
	if in.NewOnHand != before {
		adj, err := s.adjustments.RecordTx(ctx, tx, RecordAdjustmentInput{
			StoreID:        rec.StoreID,
			ItemID:         rec.ItemID,
			LocationID:     rec.LocationID,
			Type:           in.Type,
			QuantityBefore: before,
			QuantityAfter:  in.NewOnHand,
			Reason:         in.Reason,
			Reference:      in.Reference,
			Notes:          in.Notes,
			ActorID:        in.ActorID,
		})
		if err != nil {
			return nil, err
		}
		change.AdjustmentID = &adj.ID
	}

	totals, err := s.totals.RecomputeTotalsTx(ctx, tx, rec.ItemID)
	if err != nil {
		return nil, err
	}
	change.Totals = *totals

	// Single commit: stock write, adjustment, and totals land together or not at all.
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock change: %w", classifyStorageErr(err))
	}
	return change, nil
}
