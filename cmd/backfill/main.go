// backfill runs the one-time legacy stock migration for a store, converting
// flat per-item stock numbers into ledger rows at the store's default
// location. Re-running is safe: already-migrated items are skipped.
//
// Usage: go run ./cmd/backfill -store <store-id>
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"stock-ledger/internal/core"
	"stock-ledger/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	storeID := flag.String("store", "", "store id to migrate")
	flag.Parse()
	if *storeID == "" {
		log.Fatal("usage: backfill -store <store-id>")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	locations := core.NewLocationService(pool)
	totals := core.NewTotalsService(pool)
	migration := core.NewMigrationService(pool, locations, totals)

	report, err := migration.Run(ctx, *storeID)
	if err != nil && !errors.Is(err, core.ErrPartialFailure) {
		log.Fatalf("migration failed: %v", err)
	}

	log.Printf("store %s: status=%s migrated=%d skipped=%d failed=%d",
		report.StoreID, report.Status, report.Migrated, report.Skipped, report.Failed)
	for _, msg := range report.Errors {
		log.Printf("  failed: %s", msg)
	}
	if report.Failed > 0 {
		os.Exit(1)
	}
}
