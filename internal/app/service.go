package app

import "context"

// ApplicationService is the single interface out-of-scope collaborators
// (UI, reporting, migration triggers) call into the inventory ledger.
// It decouples presentation from the core; implementations contain no
// display logic of any kind.
type ApplicationService interface {
	// ListLocations returns a store's active locations, ordered by name.
	ListLocations(ctx context.Context, storeID string) (*LocationListResult, error)

	// SaveLocation creates or updates a stocking location.
	SaveLocation(ctx context.Context, req SaveLocationRequest) (*LocationResult, error)

	// GetStock returns an item's per-location stock joined with location
	// metadata, one entry per (item, location).
	GetStock(ctx context.Context, itemID string) (*StockListResult, error)

	// AddLocationToItem starts tracking an item at a location with zeroed
	// quantities. Calling it again for the same pair is a no-op.
	AddLocationToItem(ctx context.Context, req AddLocationRequest) (*StockRecordResult, error)

	// SetStock applies one audited quantity change to a stock record.
	SetStock(ctx context.Context, req SetStockRequest) (*AppliedChangeResult, error)

	// GetAdjustmentHistory returns an item's adjustments, newest first,
	// optionally filtered to one location.
	GetAdjustmentHistory(ctx context.Context, req HistoryRequest) (*HistoryResult, error)

	// RecomputeTotals re-derives an item's rollups from the ledger.
	RecomputeTotals(ctx context.Context, itemID string) (*TotalsResult, error)

	// RunLegacyMigration converts a store's flat legacy stock numbers into
	// ledger rows. Safe to re-invoke; already-migrated items are skipped.
	RunLegacyMigration(ctx context.Context, storeID string) (*MigrationResult, error)
}
