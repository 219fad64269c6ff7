package core

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// migrationBatchSize bounds how many items one batch processes; each item is
// still committed in its own transaction so a mid-batch interruption never
// rolls back previously migrated items.
const migrationBatchSize = 50

type MigrationStatus string

const (
	MigrationCompleted       MigrationStatus = "COMPLETED"
	MigrationPartiallyFailed MigrationStatus = "PARTIALLY_FAILED"
)

// MigrationReport summarizes one legacy migration run.
type MigrationReport struct {
	StoreID  string
	Migrated int
	Skipped  int
	Failed   int
	Status   MigrationStatus
	Errors   []string
}

// MigrationService converts a store's flat per-item legacy stock numbers into
// ledger rows at the store's default location. The run is safely repeatable:
// items that already have a record at the default location are skipped.
type MigrationService interface {
	// Run migrates one store. Per-item failures are logged and counted, not
	// fatal; when any item fails, the report and a wrapped ErrPartialFailure
	// are both returned. A second Run for the same store while one is in
	// flight is rejected with ErrConflict.
	Run(ctx context.Context, storeID string) (*MigrationReport, error)
}

type migrationService struct {
	pool      *pgxpool.Pool
	locations LocationService
	totals    TotalsService

	mu      sync.Mutex
	running map[string]bool
}

// NewMigrationService constructs a MigrationService backed by PostgreSQL.
func NewMigrationService(pool *pgxpool.Pool, locations LocationService, totals TotalsService) MigrationService {
	return &migrationService{
		pool:      pool,
		locations: locations,
		totals:    totals,
		running:   make(map[string]bool),
	}
}

func (s *migrationService) Run(ctx context.Context, storeID string) (*MigrationReport, error) {
	if storeID == "" {
		return nil, validationf("store id is required")
	}

	s.mu.Lock()
	if s.running[storeID] {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: migration already running for store %s", ErrConflict, storeID)
	}
	s.running[storeID] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.running, storeID)
		s.mu.Unlock()
	}()

	defaultLoc, err := s.locations.EnsureDefaultLocation(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure default location for store %s: %w", storeID, err)
	}

	report := &MigrationReport{StoreID: storeID, Status: MigrationCompleted}

	lastID := ""
	for {
		items, err := s.fetchItemBatch(ctx, storeID, lastID)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			lastID = item.id
			migrated, err := s.migrateItem(ctx, storeID, defaultLoc.ID, item)
			if err != nil {
				log.Printf("migration: store %s item %s failed: %v", storeID, item.id, err)
				report.Failed++
				report.Errors = append(report.Errors, fmt.Sprintf("item %s: %v", item.id, err))
				continue
			}
			if migrated {
				report.Migrated++
			} else {
				report.Skipped++
			}
		}
	}

	if report.Failed > 0 {
		report.Status = MigrationPartiallyFailed
		return report, fmt.Errorf("%w: %d of %d items failed for store %s",
			ErrPartialFailure, report.Failed, report.Migrated+report.Skipped+report.Failed, storeID)
	}
	return report, nil
}

// legacyItem carries the loosely-typed flat stock fields of the old record
// store; values may be fractional or absent.
type legacyItem struct {
	id          string
	stock       *string
	committed   *string
	unavailable *string
}

func (s *migrationService) fetchItemBatch(ctx context.Context, storeID, afterID string) ([]legacyItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, legacy_stock::text, legacy_committed::text, legacy_unavailable::text
		FROM items
		WHERE store_id = $1 AND id > $2
		ORDER BY id
		LIMIT $3
	`, storeID, afterID, migrationBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query item batch for store %s: %w", storeID, classifyStorageErr(err))
	}
	defer rows.Close()

	var items []legacyItem
	for rows.Next() {
		var it legacyItem
		if err := rows.Scan(&it.id, &it.stock, &it.committed, &it.unavailable); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", classifyStorageErr(err))
	}
	return items, nil
}

// migrateItem seeds one ledger row from an item's legacy fields and refreshes
// the item's derived totals and tracking flags, all in one transaction.
// Returns false when the item already had a record at the default location.
func (s *migrationService) migrateItem(ctx context.Context, storeID, locationID string, item legacyItem) (bool, error) {
	var migrated bool
	err := withRetry(ctx, func(ctx context.Context) error {
		migrated = false
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", classifyStorageErr(err))
		}
		defer tx.Rollback(ctx)

		// Skip-if-exists makes the whole run idempotent.
		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM stock_records WHERE item_id = $1 AND location_id = $2)",
			item.id, locationID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check existing record: %w", classifyStorageErr(err))
		}
		if exists {
			return nil
		}

		onHand, err := legacyQuantity(item.stock)
		if err != nil {
			return err
		}
		committed, err := legacyQuantity(item.committed)
		if err != nil {
			return err
		}
		unavailable, err := legacyQuantity(item.unavailable)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO stock_records (id, store_id, item_id, location_id, on_hand, committed, unavailable, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		`, uuid.NewString(), storeID, item.id, locationID, onHand, committed, unavailable)
		if err != nil {
			return fmt.Errorf("failed to seed stock record: %w", classifyStorageErr(err))
		}

		_, err = tx.Exec(ctx, `
			UPDATE items SET track_qty = true, allow_preorder = false, updated_at = NOW()
			WHERE id = $1
		`, item.id)
		if err != nil {
			return fmt.Errorf("failed to update tracking flags: %w", classifyStorageErr(err))
		}

		if _, err := s.totals.RecomputeTotalsTx(ctx, tx, item.id); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit migration: %w", classifyStorageErr(err))
		}
		migrated = true
		return nil
	})
	return migrated, err
}

// legacyQuantity parses a legacy numeric field. The old store was loosely
// typed, so values can be fractional ("7.0"); they are truncated to whole
// units. Missing fields default to 0.
func legacyQuantity(raw *string) (int64, error) {
	if raw == nil || *raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable legacy quantity %q", ErrValidation, *raw)
	}
	return d.IntPart(), nil
}
