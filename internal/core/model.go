package core

import "time"

type LocationType string

const (
	LocationWarehouse    LocationType = "warehouse"
	LocationStore        LocationType = "store"
	LocationOffice       LocationType = "office"
	LocationDistribution LocationType = "distribution"
	LocationOther        LocationType = "other"
)

// Location is a physical or logical stocking point within a store.
// At most one location per store should carry IsDefault — this is advisory,
// not enforced at write time (the migration path tolerates violations).
type Location struct {
	ID                   string
	StoreID              string
	Name                 string
	Type                 LocationType
	IsDefault            bool
	IsActive             bool
	FulfillsOnlineOrders bool
	Address              map[string]any // opaque contact/address payload
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// StockRecord holds the quantities for one item at one location.
// At most one row exists per (item, location) pair; where legacy duplicates
// survive, the row with the latest UpdatedAt is authoritative.
type StockRecord struct {
	ID          string
	StoreID     string
	ItemID      string
	LocationID  string
	OnHand      int64
	Committed   int64
	Unavailable int64
	UpdatedAt   time.Time
}

// Available is the sellable remainder at this location.
func (r StockRecord) Available() int64 {
	return r.OnHand - r.Committed - r.Unavailable
}

// StockEntry is a read view of a stock record joined with its location.
type StockEntry struct {
	Record   StockRecord
	Location Location
}

type AdjustmentType string

const (
	AdjustmentTypeAdjustment AdjustmentType = "adjustment"
	AdjustmentTypeCorrection AdjustmentType = "correction"
	AdjustmentTypeOther      AdjustmentType = "other"
)

// Adjustment is the immutable audit record of exactly one quantity change
// at one location. Rows are only ever inserted, never updated or deleted.
type Adjustment struct {
	ID             string
	StoreID        string
	ItemID         string
	LocationID     string
	Type           AdjustmentType
	QuantityBefore int64
	QuantityAfter  int64
	QuantityChange int64 // = QuantityAfter - QuantityBefore
	Reason         string
	Reference      *string
	Notes          *string
	ActorID        *string
	CreatedAt      time.Time
}

// ItemTotals are the item-level rollups derived from the stock ledger and
// written back onto the catalog's item row.
type ItemTotals struct {
	ItemID    string
	OnHand    int64
	Available int64
	Committed int64
}

// DedupeEntries collapses entries sharing an (item, location) pair down to the
// one with the latest UpdatedAt. Relative order of the survivors is preserved.
// Kept as a compatibility shim for stores migrated with pre-existing duplicate
// rows; new schemas enforce uniqueness at the storage layer.
func DedupeEntries(entries []StockEntry) []StockEntry {
	type pair struct{ itemID, locationID string }
	best := make(map[pair]int, len(entries))
	for i, e := range entries {
		k := pair{e.Record.ItemID, e.Record.LocationID}
		j, seen := best[k]
		if !seen || e.Record.UpdatedAt.After(entries[j].Record.UpdatedAt) {
			best[k] = i
		}
	}
	out := make([]StockEntry, 0, len(best))
	for i, e := range entries {
		k := pair{e.Record.ItemID, e.Record.LocationID}
		if best[k] == i {
			out = append(out, e)
		}
	}
	return out
}

func validLocationType(t LocationType) bool {
	switch t {
	case LocationWarehouse, LocationStore, LocationOffice, LocationDistribution, LocationOther:
		return true
	}
	return false
}

func validAdjustmentType(t AdjustmentType) bool {
	switch t {
	case AdjustmentTypeAdjustment, AdjustmentTypeCorrection, AdjustmentTypeOther:
		return true
	}
	return false
}
