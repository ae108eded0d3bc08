package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vantagecrm.io/internal/audit"
	"vantagecrm.io/internal/crm"
	"vantagecrm.io/internal/directory"
	"vantagecrm.io/internal/httpapi"
	"vantagecrm.io/internal/obs"
	"vantagecrm.io/internal/store/pg"
)

var (
	version = "0.4.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	var (
		stores  httpapi.Stores
		probe   httpapi.ReadyProbe
		sink    audit.Sink = audit.LogSink{}
		pgStore *pg.Store
	)

	if dsn := os.Getenv("VANTAGE_PG_DSN"); dsn != "" {
		var err error
		pgStore, err = pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
		sink = pgStore.AuditSink()
		stores = httpapi.Stores{
			Contacts:       pgStore.Contacts(),
			Deals:          pgStore.Deals(),
			Activities:     pgStore.Activities(),
			Communications: pgStore.Communications(),
			Documents:      pgStore.Documents(),
			Workflows:      pgStore.Workflows(),
			Users:          pgStore.Directory(),
		}
	} else {
		// No DSN: in-memory stores for local development.
		stores = httpapi.Stores{
			Contacts:       crm.NewMemStore(crm.CloneContact),
			Deals:          crm.NewMemStore(crm.CloneDeal),
			Activities:     crm.NewMemStore(crm.CloneActivity),
			Communications: crm.NewMemStore(crm.CloneCommunication),
			Documents:      crm.NewMemStore(crm.CloneDocument),
			Workflows:      crm.NewMemStore(crm.CloneWorkflow),
			Users:          directory.NewMemStore(),
		}
	}

	auditor := audit.NewWriter(sink, sinkName(pgStore))

	api := httpapi.New(probe, version, stores, auditor)

	addr := os.Getenv("VANTAGE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting vantage-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	auditor.Close()
	if pgStore != nil {
		_ = pgStore.Close()
	}
	log.Println("Stopped")
}

func sinkName(pgStore *pg.Store) string {
	if pgStore != nil {
		return "pg"
	}
	return "log"
}
