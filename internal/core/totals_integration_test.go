package core_test

import (
	"errors"
	"testing"

	"stock-ledger/internal/core"
)

func TestTotals_SumsAcrossLocations(t *testing.T) {
	f := setupTestDB(t)
	seedItem(t, f, "item-1")
	locA := seedLocation(t, f, "Warehouse A")
	locB := seedLocation(t, f, "Warehouse B")

	recA, _, _ := f.stock.AddLocationToItem(f.ctx, "item-1", locA.ID, testStoreID)
	recB, _, _ := f.stock.AddLocationToItem(f.ctx, "item-1", locB.ID, testStoreID)
	mustSetStock(t, f, recA.ID, 10)

	committed := int64(4)
	_, err := f.stock.SetStock(f.ctx, core.SetStockInput{
		RecordID:     recB.ID,
		NewOnHand:    15,
		NewCommitted: &committed,
		Reason:       "initial count",
	})
	if err != nil {
		t.Fatalf("SetStock failed: %v", err)
	}

	totals, err := f.totals.RecomputeTotals(f.ctx, "item-1")
	if err != nil {
		t.Fatalf("RecomputeTotals failed: %v", err)
	}
	if totals.OnHand != 25 {
		t.Errorf("Expected total on_hand=25, got %d", totals.OnHand)
	}
	if totals.Committed != 4 {
		t.Errorf("Expected total committed=4, got %d", totals.Committed)
	}
	if totals.Available != 21 {
		t.Errorf("Expected total available=21 (25-4-0), got %d", totals.Available)
	}

	onHand, available, committedTotal := fetchItemTotals(t, f, "item-1")
	if onHand != 25 || available != 21 || committedTotal != 4 {
		t.Errorf("Item row totals mismatch: %d/%d/%d", onHand, available, committedTotal)
	}
}

func TestTotals_RecomputeIsIdempotent(t *testing.T) {
	f := setupTestDB(t)
	seedItem(t, f, "item-1")
	loc := seedLocation(t, f, "Warehouse A")
	rec, _, _ := f.stock.AddLocationToItem(f.ctx, "item-1", loc.ID, testStoreID)
	mustSetStock(t, f, rec.ID, 33)

	first, err := f.totals.RecomputeTotals(f.ctx, "item-1")
	if err != nil {
		t.Fatalf("First RecomputeTotals failed: %v", err)
	}
	second, err := f.totals.RecomputeTotals(f.ctx, "item-1")
	if err != nil {
		t.Fatalf("Second RecomputeTotals failed: %v", err)
	}
	if *first != *second {
		t.Errorf("Recompute not idempotent: %+v vs %+v", first, second)
	}
}

func TestTotals_ItemWithNoRecordsIsZero(t *testing.T) {
	f := setupTestDB(t)
	seedItem(t, f, "item-1")

	totals, err := f.totals.RecomputeTotals(f.ctx, "item-1")
	if err != nil {
		t.Fatalf("RecomputeTotals failed: %v", err)
	}
	if totals.OnHand != 0 || totals.Available != 0 || totals.Committed != 0 {
		t.Errorf("Expected zero totals, got %+v", totals)
	}
}

func TestTotals_NotFound(t *testing.T) {
	f := setupTestDB(t)

	_, err := f.totals.RecomputeTotals(f.ctx, "no-such-item")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
