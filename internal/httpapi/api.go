package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"vantagecrm.io/internal/authz"
	"vantagecrm.io/internal/crm"
	"vantagecrm.io/internal/directory"
	"vantagecrm.io/internal/obs"
)

// ReadyProbe reports readiness (DB ping when a pool is configured).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Stores bundles the persistence collaborators the API wraps. Each resource
// store is guarded uniformly; none of them sees an unfiltered query.
type Stores struct {
	Contacts       authz.Store[*crm.Contact]
	Deals          authz.Store[*crm.Deal]
	Activities     authz.Store[*crm.Activity]
	Communications authz.Store[*crm.Communication]
	Documents      authz.Store[*crm.Document]
	Workflows      authz.Store[*crm.Workflow]
	Users          directory.Store
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	catalog    *authz.Catalog
	users      directory.Store
	tokenTTL   time.Duration

	rateBurst  int
	ratePerSec int
	maxBody    int64
}

// New wires the guards and routes. auditor receives one entry per mutation;
// pass nil to disable auditing in throwaway setups.
func New(rp ReadyProbe, version string, stores Stores, auditor authz.Auditor) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		catalog:    authz.DefaultCatalog(),
		users:      stores.Users,
		tokenTTL:   time.Hour,
		rateBurst:  20,
		ratePerSec: 10,
		maxBody:    1 << 20,
	}

	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.HandleFunc("GET /v1/info", a.Info)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("POST /v1/auth/token", a.IssueToken)
	a.mux.HandleFunc("GET /v1/users", a.ListUsers)

	registerResource(a, authz.ResourceContacts, stores.Contacts, auditor,
		func() *crm.Contact { return &crm.Contact{} })
	registerResource(a, authz.ResourceDeals, stores.Deals, auditor,
		func() *crm.Deal { return &crm.Deal{} })
	registerResource(a, authz.ResourceActivities, stores.Activities, auditor,
		func() *crm.Activity { return &crm.Activity{} })
	registerResource(a, authz.ResourceCommunications, stores.Communications, auditor,
		func() *crm.Communication { return &crm.Communication{} })
	registerResource(a, authz.ResourceDocuments, stores.Documents, auditor,
		func() *crm.Document { return &crm.Document{} })
	registerResource(a, authz.ResourceWorkflows, stores.Workflows, auditor,
		func() *crm.Workflow { return &crm.Workflow{} })

	return a
}

// Handler composes the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, a.maxBody)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = Logging(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "vantage-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "vantage-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
