package core_test

import (
	"errors"
	"testing"

	"stock-ledger/internal/core"
)

func TestLocations_ListActiveSortedByName(t *testing.T) {
	f := setupTestDB(t)

	seedLocation(t, f, "Warehouse B")
	seedLocation(t, f, "Annex")
	inactive, err := f.locations.UpsertLocation(f.ctx, core.Location{
		StoreID:  testStoreID,
		Name:     "Closed Outlet",
		Type:     core.LocationStore,
		IsActive: false,
	})
	if err != nil {
		t.Fatalf("UpsertLocation failed: %v", err)
	}

	locations, err := f.locations.ListActiveLocations(f.ctx, testStoreID)
	if err != nil {
		t.Fatalf("ListActiveLocations failed: %v", err)
	}
	if len(locations) != 2 {
		t.Fatalf("Expected 2 active locations, got %d", len(locations))
	}
	if locations[0].Name != "Annex" || locations[1].Name != "Warehouse B" {
		t.Errorf("Expected name ordering [Annex, Warehouse B], got [%s, %s]",
			locations[0].Name, locations[1].Name)
	}
	for _, l := range locations {
		if l.ID == inactive.ID {
			t.Error("Inactive location must not be listed")
		}
	}
}

func TestLocations_ListEmptyStoreIsNotAnError(t *testing.T) {
	f := setupTestDB(t)

	locations, err := f.locations.ListActiveLocations(f.ctx, "store_with_nothing")
	if err != nil {
		t.Fatalf("Expected no error for empty store, got %v", err)
	}
	if locations == nil || len(locations) != 0 {
		t.Errorf("Expected empty slice, got %v", locations)
	}
}

func TestLocations_UpsertValidation(t *testing.T) {
	f := setupTestDB(t)

	_, err := f.locations.UpsertLocation(f.ctx, core.Location{StoreID: testStoreID, Name: "   "})
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("Expected ErrValidation for blank name, got %v", err)
	}

	_, err = f.locations.UpsertLocation(f.ctx, core.Location{
		StoreID: testStoreID, Name: "Depot", Type: core.LocationType("spaceship"),
	})
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("Expected ErrValidation for unknown type, got %v", err)
	}

	_, err = f.locations.UpsertLocation(f.ctx, core.Location{Name: "Depot"})
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("Expected ErrValidation for missing store id, got %v", err)
	}
}

func TestLocations_UpsertUpdatesInPlace(t *testing.T) {
	f := setupTestDB(t)

	loc := seedLocation(t, f, "Front Store")
	loc.Name = "Front Store (Renamed)"
	loc.IsActive = false

	updated, err := f.locations.UpsertLocation(f.ctx, *loc)
	if err != nil {
		t.Fatalf("UpsertLocation update failed: %v", err)
	}
	if updated.ID != loc.ID {
		t.Errorf("Update must keep the id, got %s want %s", updated.ID, loc.ID)
	}
	if updated.Name != "Front Store (Renamed)" {
		t.Errorf("Expected renamed location, got %q", updated.Name)
	}

	locations, err := f.locations.ListActiveLocations(f.ctx, testStoreID)
	if err != nil {
		t.Fatalf("ListActiveLocations failed: %v", err)
	}
	if len(locations) != 0 {
		t.Errorf("Deactivated location still listed: %v", locations)
	}
}

func TestLocations_EnsureDefaultCreatesOnce(t *testing.T) {
	f := setupTestDB(t)

	loc, err := f.locations.EnsureDefaultLocation(f.ctx, testStoreID)
	if err != nil {
		t.Fatalf("EnsureDefaultLocation failed: %v", err)
	}
	if !loc.IsDefault || !loc.IsActive {
		t.Errorf("Expected an active default location, got default=%v active=%v", loc.IsDefault, loc.IsActive)
	}

	again, err := f.locations.EnsureDefaultLocation(f.ctx, testStoreID)
	if err != nil {
		t.Fatalf("Second EnsureDefaultLocation failed: %v", err)
	}
	if again.ID != loc.ID {
		t.Errorf("Expected the same default location, got %s and %s", loc.ID, again.ID)
	}

	locations, err := f.locations.ListActiveLocations(f.ctx, testStoreID)
	if err != nil {
		t.Fatalf("ListActiveLocations failed: %v", err)
	}
	if len(locations) != 1 {
		t.Errorf("Expected exactly one location after two ensures, got %d", len(locations))
	}
}

func TestLocations_EnsureDefaultReusesExisting(t *testing.T) {
	f := setupTestDB(t)

	existing := seedLocation(t, f, "Only Location") // not flagged default

	loc, err := f.locations.EnsureDefaultLocation(f.ctx, testStoreID)
	if err != nil {
		t.Fatalf("EnsureDefaultLocation failed: %v", err)
	}
	if loc.ID != existing.ID {
		t.Errorf("Expected existing location %s to be reused, got %s", existing.ID, loc.ID)
	}
}

func TestLocations_EnsureDefaultPrefersFlaggedDefault(t *testing.T) {
	f := setupTestDB(t)

	seedLocation(t, f, "Aardvark Annex") // earlier by creation, not default
	flagged, err := f.locations.UpsertLocation(f.ctx, core.Location{
		StoreID:   testStoreID,
		Name:      "Zeta Depot",
		Type:      core.LocationWarehouse,
		IsDefault: true,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("UpsertLocation failed: %v", err)
	}

	loc, err := f.locations.EnsureDefaultLocation(f.ctx, testStoreID)
	if err != nil {
		t.Fatalf("EnsureDefaultLocation failed: %v", err)
	}
	if loc.ID != flagged.ID {
		t.Errorf("Expected flagged default %s, got %s", flagged.ID, loc.ID)
	}
}
