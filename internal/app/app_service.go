package app

import (
	"context"
	"errors"

	"stock-ledger/internal/core"
)

type appService struct {
	locations   core.LocationService
	stock       core.StockService
	adjustments core.AdjustmentService
	totals      core.TotalsService
	migration   core.MigrationService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	locations core.LocationService,
	stock core.StockService,
	adjustments core.AdjustmentService,
	totals core.TotalsService,
	migration core.MigrationService,
) ApplicationService {
	return &appService{
		locations:   locations,
		stock:       stock,
		adjustments: adjustments,
		totals:      totals,
		migration:   migration,
	}
}

func (s *appService) ListLocations(ctx context.Context, storeID string) (*LocationListResult, error) {
	locations, err := s.locations.ListActiveLocations(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return &LocationListResult{StoreID: storeID, Locations: locations}, nil
}

func (s *appService) SaveLocation(ctx context.Context, req SaveLocationRequest) (*LocationResult, error) {
	loc, err := s.locations.UpsertLocation(ctx, core.Location{
		ID:                   req.ID,
		StoreID:              req.StoreID,
		Name:                 req.Name,
		Type:                 req.Type,
		IsDefault:            req.IsDefault,
		IsActive:             req.IsActive,
		FulfillsOnlineOrders: req.FulfillsOnlineOrders,
		Address:              req.Address,
	})
	if err != nil {
		return nil, err
	}
	return &LocationResult{Location: loc}, nil
}

func (s *appService) GetStock(ctx context.Context, itemID string) (*StockListResult, error) {
	entries, err := s.stock.GetStock(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return &StockListResult{ItemID: itemID, Entries: entries}, nil
}

func (s *appService) AddLocationToItem(ctx context.Context, req AddLocationRequest) (*StockRecordResult, error) {
	record, created, err := s.stock.AddLocationToItem(ctx, req.ItemID, req.LocationID, req.StoreID)
	if err != nil {
		return nil, err
	}
	return &StockRecordResult{Record: record, Created: created}, nil
}

func (s *appService) SetStock(ctx context.Context, req SetStockRequest) (*AppliedChangeResult, error) {
	change, err := s.stock.SetStock(ctx, core.SetStockInput{
		RecordID:     req.RecordID,
		NewOnHand:    req.NewOnHand,
		NewCommitted: req.NewCommitted,
		Type:         req.Type,
		Reason:       req.Reason,
		Reference:    req.Reference,
		Notes:        req.Notes,
		ActorID:      req.ActorID,
	})
	if err != nil {
		return nil, err
	}
	return &AppliedChangeResult{Change: change}, nil
}

func (s *appService) GetAdjustmentHistory(ctx context.Context, req HistoryRequest) (*HistoryResult, error) {
	history, err := s.adjustments.History(ctx, req.ItemID, req.LocationID, req.Limit)
	if err != nil {
		return nil, err
	}
	return &HistoryResult{ItemID: req.ItemID, Adjustments: history}, nil
}

func (s *appService) RecomputeTotals(ctx context.Context, itemID string) (*TotalsResult, error) {
	totals, err := s.totals.RecomputeTotals(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return &TotalsResult{Totals: totals}, nil
}

func (s *appService) RunLegacyMigration(ctx context.Context, storeID string) (*MigrationResult, error) {
	report, err := s.migration.Run(ctx, storeID)
	// A partially failed run still carries a usable report; surface both.
	if err != nil && !errors.Is(err, core.ErrPartialFailure) {
		return nil, err
	}
	return &MigrationResult{Report: report}, err
}
