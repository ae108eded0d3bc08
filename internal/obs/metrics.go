package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	authzDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Authorization decisions by resource, operation and outcome.",
		},
		[]string{"resource", "operation", "outcome"},
	)

	auditEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Audit entries written, by sink and result.",
		},
		[]string{"sink", "result"},
	)

	backfillRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backfill_rows_total",
			Help: "Tenant backfill rows processed, by result.",
		},
		[]string{"result"},
	)
)

// Init registers all service metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		authzDecisions, auditEntries, backfillRows,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// AuthzDecision records one guard decision. Outcome is "allow", "deny" or
// "error".
func AuthzDecision(resource, operation, outcome string) {
	authzDecisions.WithLabelValues(resource, operation, outcome).Inc()
}

// AuditEntry records one audit write attempt.
func AuditEntry(sink, result string) {
	auditEntries.WithLabelValues(sink, result).Inc()
}

// BackfillRows adds processed backfill rows with the given result
// ("updated" or "skipped").
func BackfillRows(result string, n int) {
	backfillRows.WithLabelValues(result).Add(float64(n))
}

// resourcePaths are the collections whose by-id routes collapse to one label.
var resourcePaths = map[string]bool{
	"contacts":       true,
	"deals":          true,
	"activities":     true,
	"communications": true,
	"documents":      true,
	"workflows":      true,
	"users":          true,
}

// CanonicalPath maps request paths onto a bounded metric label set: record ids
// in /v1/<resource>/<id> collapse to :id so label cardinality stays flat.
func CanonicalPath(path string) string {
	if path == "" {
		return "/"
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 3 && parts[0] == "v1" && resourcePaths[parts[1]] {
		return "/v1/" + parts[1] + "/:id"
	}
	return path
}

// Instrument wraps a handler with RPS/latency/in-flight measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter captures the response code for metric labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
