package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TotalsService keeps item-level rollups consistent with the stock ledger.
// Recomputation is idempotent: with no intervening ledger writes, running it
// twice yields identical totals.
type TotalsService interface {
	// RecomputeTotals re-derives an item's totals from its stock records and
	// writes them onto the item row. Transient failures are retried with
	// bounded backoff; NotFound surfaces immediately.
	RecomputeTotals(ctx context.Context, itemID string) (*ItemTotals, error)

	// RecomputeTotalsTx is the same computation within the caller's
	// transaction, used by SetStock to land totals atomically with the
	// stock write and its adjustment.
	RecomputeTotalsTx(ctx context.Context, tx pgx.Tx, itemID string) (*ItemTotals, error)
}

type totalsService struct {
	pool *pgxpool.Pool
}

// NewTotalsService constructs a TotalsService backed by PostgreSQL.
func NewTotalsService(pool *pgxpool.Pool) TotalsService {
	return &totalsService{pool: pool}
}

func (s *totalsService) RecomputeTotals(ctx context.Context, itemID string) (*ItemTotals, error) {
	var totals *ItemTotals
	err := withRetry(ctx, func(ctx context.Context) error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", classifyStorageErr(err))
		}
		defer tx.Rollback(ctx)

		totals, err = s.RecomputeTotalsTx(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit totals for item %s: %w", itemID, classifyStorageErr(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (s *totalsService) RecomputeTotalsTx(ctx context.Context, tx pgx.Tx, itemID string) (*ItemTotals, error) {
	if itemID == "" {
		return nil, validationf("item id is required")
	}

	// DISTINCT ON keeps the latest row per (item, location) so legacy
	// duplicate records cannot double-count (same shim as GetStock).
	totals := ItemTotals{ItemID: itemID}
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(on_hand), 0),
		       COALESCE(SUM(committed), 0),
		       COALESCE(SUM(on_hand - committed - unavailable), 0)
		FROM (
			SELECT DISTINCT ON (item_id, location_id) on_hand, committed, unavailable
			FROM stock_records
			WHERE item_id = $1
			ORDER BY item_id, location_id, updated_at DESC
		) r
	`, itemID).Scan(&totals.OnHand, &totals.Committed, &totals.Available)
	if err != nil {
		return nil, fmt.Errorf("failed to sum stock records for item %s: %w", itemID, classifyStorageErr(err))
	}

	tag, err := tx.Exec(ctx, `
		UPDATE items
		SET total_on_hand = $1, total_available = $2, total_committed = $3, updated_at = NOW()
		WHERE id = $4
	`, totals.OnHand, totals.Available, totals.Committed, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to write totals for item %s: %w", itemID, classifyStorageErr(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, notFoundf("item %s", itemID)
	}
	return &totals, nil
}
