// reconcile sweeps the ledger for invariant drift: item totals that disagree
// with the sum of their stock records, duplicate (item, location) pairs, and
// adjustments whose quantity_change does not match after - before. It reports
// findings and exits 1 when any drift is found.
//
// Usage: go run ./cmd/reconcile [-store <store-id>]
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"stock-ledger/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	storeID := flag.String("store", "", "limit the sweep to one store (default: all)")
	flag.Parse()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	drift := 0
	drift += checkTotals(ctx, pool, *storeID)
	drift += checkDuplicates(ctx, pool, *storeID)
	drift += checkAdjustmentArithmetic(ctx, pool, *storeID)

	if drift > 0 {
		log.Printf("[DONE] %d violation(s) found", drift)
		os.Exit(1)
	}
	log.Println("[DONE] ledger is consistent")
}

// checkTotals compares each item's stored rollups against the authoritative
// sums over its stock records (latest row per location, as readers see it).
func checkTotals(ctx context.Context, pool *pgxpool.Pool, storeID string) int {
	rows, err := pool.Query(ctx, `
		SELECT i.id, i.total_on_hand, i.total_available, i.total_committed,
		       COALESCE(s.on_hand, 0), COALESCE(s.available, 0), COALESCE(s.committed, 0)
		FROM items i
		LEFT JOIN (
			SELECT item_id,
			       SUM(on_hand) AS on_hand,
			       SUM(on_hand - committed - unavailable) AS available,
			       SUM(committed) AS committed
			FROM (
				SELECT DISTINCT ON (item_id, location_id) item_id, on_hand, committed, unavailable
				FROM stock_records
				ORDER BY item_id, location_id, updated_at DESC
			) latest
			GROUP BY item_id
		) s ON s.item_id = i.id
		WHERE i.track_qty = true AND ($1 = '' OR i.store_id = $1)
	`, storeID)
	if err != nil {
		log.Fatalf("[TOTALS] query failed: %v", err)
	}
	defer rows.Close()

	violations := 0
	for rows.Next() {
		var id string
		var tOnHand, tAvailable, tCommitted, sOnHand, sAvailable, sCommitted int64
		if err := rows.Scan(&id, &tOnHand, &tAvailable, &tCommitted, &sOnHand, &sAvailable, &sCommitted); err != nil {
			log.Fatalf("[TOTALS] scan failed: %v", err)
		}
		if tOnHand != sOnHand || tAvailable != sAvailable || tCommitted != sCommitted {
			violations++
			log.Printf("[TOTALS] item %s: stored (%d/%d/%d) != ledger (%d/%d/%d)",
				id, tOnHand, tAvailable, tCommitted, sOnHand, sAvailable, sCommitted)
		}
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("[TOTALS] iteration failed: %v", err)
	}
	return violations
}

// checkDuplicates finds (item, location) pairs with more than one record —
// possible only in stores migrated before uniqueness was enforced.
func checkDuplicates(ctx context.Context, pool *pgxpool.Pool, storeID string) int {
	rows, err := pool.Query(ctx, `
		SELECT item_id, location_id, COUNT(*)
		FROM stock_records
		WHERE $1 = '' OR store_id = $1
		GROUP BY item_id, location_id
		HAVING COUNT(*) > 1
	`, storeID)
	if err != nil {
		log.Fatalf("[DUPES] query failed: %v", err)
	}
	defer rows.Close()

	violations := 0
	for rows.Next() {
		var itemID, locationID string
		var n int64
		if err := rows.Scan(&itemID, &locationID, &n); err != nil {
			log.Fatalf("[DUPES] scan failed: %v", err)
		}
		violations++
		log.Printf("[DUPES] item %s location %s has %d records", itemID, locationID, n)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("[DUPES] iteration failed: %v", err)
	}
	return violations
}

func checkAdjustmentArithmetic(ctx context.Context, pool *pgxpool.Pool, storeID string) int {
	rows, err := pool.Query(ctx, `
		SELECT id, quantity_before, quantity_after, quantity_change
		FROM stock_adjustments
		WHERE quantity_change <> quantity_after - quantity_before
		  AND ($1 = '' OR store_id = $1)
	`, storeID)
	if err != nil {
		log.Fatalf("[AUDIT] query failed: %v", err)
	}
	defer rows.Close()

	violations := 0
	for rows.Next() {
		var id string
		var before, after, change int64
		if err := rows.Scan(&id, &before, &after, &change); err != nil {
			log.Fatalf("[AUDIT] scan failed: %v", err)
		}
		violations++
		log.Printf("[AUDIT] adjustment %s: change %d != %d - %d", id, change, after, before)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("[AUDIT] iteration failed: %v", err)
	}
	return violations
}
