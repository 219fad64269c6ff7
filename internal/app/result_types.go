package app

import "stock-ledger/internal/core"

// LocationListResult is returned by ListLocations.
type LocationListResult struct {
	StoreID   string
	Locations []core.Location
}

// LocationResult is returned by SaveLocation.
type LocationResult struct {
	Location *core.Location
}

// StockListResult is returned by GetStock.
type StockListResult struct {
	ItemID  string
	Entries []core.StockEntry
}

// StockRecordResult is returned by AddLocationToItem. Created is false when
// the (item, location) pair was already tracked.
type StockRecordResult struct {
	Record  *core.StockRecord
	Created bool
}

// AppliedChangeResult is returned by SetStock.
type AppliedChangeResult struct {
	Change *core.AppliedChange
}

// HistoryResult is returned by GetAdjustmentHistory.
type HistoryResult struct {
	ItemID      string
	Adjustments []core.Adjustment
}

// TotalsResult is returned by RecomputeTotals.
type TotalsResult struct {
	Totals *core.ItemTotals
}

// MigrationResult is returned by RunLegacyMigration.
type MigrationResult struct {
	Report *core.MigrationReport
}
