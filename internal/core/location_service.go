package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LocationService manages the stocking-location registry for a store.
// It never touches stock quantities.
type LocationService interface {
	// ListActiveLocations returns a store's active locations ordered by name.
	// An empty slice (not an error) is returned when none exist.
	ListActiveLocations(ctx context.Context, storeID string) ([]Location, error)

	// UpsertLocation creates or updates a location. Name must be non-empty.
	// Single-default-per-store is advisory and not enforced here.
	UpsertLocation(ctx context.Context, loc Location) (*Location, error)

	// EnsureDefaultLocation returns the store's default location, falling back
	// to the first active location, creating one when the store has none.
	// Safe under concurrent callers: racers converge on the earliest row.
	EnsureDefaultLocation(ctx context.Context, storeID string) (*Location, error)
}

type locationService struct {
	pool *pgxpool.Pool
}

// NewLocationService constructs a LocationService backed by PostgreSQL.
func NewLocationService(pool *pgxpool.Pool) LocationService {
	return &locationService{pool: pool}
}

const locationColumns = `id, store_id, name, type, is_default, is_active, fulfills_online_orders, address, created_at, updated_at`

func scanLocation(row pgx.Row) (*Location, error) {
	var l Location
	err := row.Scan(&l.ID, &l.StoreID, &l.Name, &l.Type, &l.IsDefault, &l.IsActive,
		&l.FulfillsOnlineOrders, &l.Address, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *locationService) ListActiveLocations(ctx context.Context, storeID string) ([]Location, error) {
	if storeID == "" {
		return nil, validationf("store id is required")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+locationColumns+`
		FROM locations
		WHERE store_id = $1 AND is_active = true
		ORDER BY name
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", classifyStorageErr(err))
	}
	defer rows.Close()

	locations := []Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", classifyStorageErr(err))
	}
	return locations, nil
}

func (s *locationService) UpsertLocation(ctx context.Context, loc Location) (*Location, error) {
	if strings.TrimSpace(loc.Name) == "" {
		return nil, validationf("location name must not be empty")
	}
	if loc.StoreID == "" {
		return nil, validationf("store id is required")
	}
	if loc.Type == "" {
		loc.Type = LocationOther
	}
	if !validLocationType(loc.Type) {
		return nil, validationf("unknown location type %q", loc.Type)
	}
	if loc.ID == "" {
		loc.ID = uuid.NewString()
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO locations (id, store_id, name, type, is_default, is_active, fulfills_online_orders, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			is_default = EXCLUDED.is_default,
			is_active = EXCLUDED.is_active,
			fulfills_online_orders = EXCLUDED.fulfills_online_orders,
			address = EXCLUDED.address,
			updated_at = NOW()
		RETURNING `+locationColumns+`
	`, loc.ID, loc.StoreID, loc.Name, loc.Type, loc.IsDefault, loc.IsActive,
		loc.FulfillsOnlineOrders, loc.Address)

	saved, err := scanLocation(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert location %s: %w", loc.ID, classifyStorageErr(err))
	}
	return saved, nil
}

func (s *locationService) EnsureDefaultLocation(ctx context.Context, storeID string) (*Location, error) {
	if storeID == "" {
		return nil, validationf("store id is required")
	}

	loc, err := s.firstLocation(ctx, storeID)
	if err == nil {
		return loc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to resolve default location: %w", classifyStorageErr(err))
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO locations (id, store_id, name, type, is_default, is_active, fulfills_online_orders, address, created_at, updated_at)
		VALUES ($1, $2, 'Main location', $3, true, true, true, NULL, NOW(), NOW())
	`, uuid.NewString(), storeID, LocationWarehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to create default location: %w", classifyStorageErr(err))
	}

	// Re-select instead of returning our insert: if another creator raced us,
	// both callers converge on the earliest row.
	loc, err = s.firstLocation(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch default location after create: %w", classifyStorageErr(err))
	}
	return loc, nil
}

// firstLocation prefers the flagged default, then the earliest active location.
func (s *locationService) firstLocation(ctx context.Context, storeID string) (*Location, error) {
	return scanLocation(s.pool.QueryRow(ctx, `
		SELECT `+locationColumns+`
		FROM locations
		WHERE store_id = $1 AND is_active = true
		ORDER BY is_default DESC, created_at, id
		LIMIT 1
	`, storeID))
}
