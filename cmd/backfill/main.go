// Command backfill assigns tenant ids to records created before tenant
// tagging. Safe to re-run: already-assigned rows are never touched.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"vantagecrm.io/internal/authz"
	"vantagecrm.io/internal/backfill"
	"vantagecrm.io/internal/obs"
	"vantagecrm.io/internal/store/pg"
)

func main() {
	log.SetFlags(0)
	obs.Init()

	dsn := os.Getenv("VANTAGE_PG_DSN")
	if dsn == "" {
		log.Fatal("missing DSN: set VANTAGE_PG_DSN")
	}

	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	var resources []string
	for _, rt := range authz.ResourceTypes {
		resources = append(resources, string(rt))
	}

	job := backfill.NewJob(store.BackfillSource(), store.Directory(), resources)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	report, err := job.Run(ctx)
	if err != nil {
		log.Printf("backfill aborted after %s: %v", time.Since(start).Round(time.Millisecond), err)
		os.Exit(1)
	}

	fmt.Printf("backfill complete in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("updated: %d\n", report.Updated)
	fmt.Printf("skipped: %d\n", report.Skipped)
	for _, id := range report.SkippedIDs {
		fmt.Printf("skipped record: %s\n", id)
	}
}
