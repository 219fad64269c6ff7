package app

import "stock-ledger/internal/core"

// SaveLocationRequest creates a location when ID is empty, updates otherwise.
type SaveLocationRequest struct {
	ID                   string
	StoreID              string
	Name                 string
	Type                 core.LocationType
	IsDefault            bool
	IsActive             bool
	FulfillsOnlineOrders bool
	Address              map[string]any
}

// AddLocationRequest starts tracking an item at a location.
type AddLocationRequest struct {
	ItemID     string
	LocationID string
	StoreID    string
}

// SetStockRequest applies one quantity change to a stock record.
// NewCommitted is optional; nil leaves the committed quantity as-is.
type SetStockRequest struct {
	RecordID     string
	NewOnHand    int64
	NewCommitted *int64
	Type         core.AdjustmentType
	Reason       string
	Reference    *string
	Notes        *string
	ActorID      *string
}

// HistoryRequest reads an item's adjustment log. LocationID nil means all
// locations; Limit <= 0 applies the default page size.
type HistoryRequest struct {
	ItemID     string
	LocationID *string
	Limit      int
}
