package core_test

import (
	"testing"
	"time"

	"stock-ledger/internal/core"
)

func TestStockRecord_Available(t *testing.T) {
	cases := []struct {
		name                           string
		onHand, committed, unavailable int64
		want                           int64
	}{
		{"all zero", 0, 0, 0, 0},
		{"plain on hand", 10, 0, 0, 10},
		{"committed and unavailable deducted", 20, 5, 3, 12},
		{"oversold goes negative", 4, 6, 0, -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := core.StockRecord{OnHand: tc.onHand, Committed: tc.committed, Unavailable: tc.unavailable}
			if got := r.Available(); got != tc.want {
				t.Errorf("Available() = %d, want %d", got, tc.want)
			}
		})
	}
}

func entryAt(itemID, locationID string, onHand int64, updated time.Time) core.StockEntry {
	return core.StockEntry{
		Record: core.StockRecord{
			ID:         itemID + "/" + locationID,
			ItemID:     itemID,
			LocationID: locationID,
			OnHand:     onHand,
			UpdatedAt:  updated,
		},
	}
}

func TestDedupeEntries_KeepsLatestPerPair(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := entryAt("item-1", "loc-a", 5, base)
	newer := entryAt("item-1", "loc-a", 9, base.Add(time.Hour))
	other := entryAt("item-1", "loc-b", 3, base)

	got := core.DedupeEntries([]core.StockEntry{older, newer, other})
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries after dedupe, got %d", len(got))
	}
	for _, e := range got {
		if e.Record.LocationID == "loc-a" && e.Record.OnHand != 9 {
			t.Errorf("Expected the newer loc-a row (on_hand=9), got on_hand=%d", e.Record.OnHand)
		}
	}
}

func TestDedupeEntries_OrderInsensitive(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	newer := entryAt("item-1", "loc-a", 9, base.Add(time.Hour))
	older := entryAt("item-1", "loc-a", 5, base)

	// Newer row first: the later-updated row must still win.
	got := core.DedupeEntries([]core.StockEntry{newer, older})
	if len(got) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(got))
	}
	if got[0].Record.OnHand != 9 {
		t.Errorf("Expected on_hand=9, got %d", got[0].Record.OnHand)
	}
}

func TestDedupeEntries_NoDuplicates(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := entryAt("item-1", "loc-a", 1, base)
	b := entryAt("item-1", "loc-b", 2, base)

	got := core.DedupeEntries([]core.StockEntry{a, b})
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(got))
	}
	// Survivor order is preserved.
	if got[0].Record.LocationID != "loc-a" || got[1].Record.LocationID != "loc-b" {
		t.Errorf("Expected original order preserved, got %s then %s",
			got[0].Record.LocationID, got[1].Record.LocationID)
	}
}

func TestDedupeEntries_Empty(t *testing.T) {
	if got := core.DedupeEntries(nil); len(got) != 0 {
		t.Errorf("Expected empty result for nil input, got %d", len(got))
	}
}
