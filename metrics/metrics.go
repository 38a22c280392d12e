// Package metrics provides Prometheus metrics for monitoring.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Provider metrics
	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec

	// Watchlist metrics
	WatchlistMutations *prometheus.CounterVec
	WatchlistReloads   prometheus.Counter
	WatchlistSize      prometheus.Gauge

	// Session metrics
	SessionFetches *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "folio"
	}

	return &Metrics{
		ProviderRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Total number of market-data provider requests by endpoint and HTTP status",
		}, []string{"endpoint", "code"}),
		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Market-data provider request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		WatchlistMutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watchlist",
			Name:      "mutations_total",
			Help:      "Total number of persisted watchlist mutations by operation",
		}, []string{"op"}),
		WatchlistReloads: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watchlist",
			Name:      "reloads_total",
			Help:      "Total number of re-hydrations caused by another process",
		}),
		WatchlistSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "watchlist",
			Name:      "tokens",
			Help:      "Number of tokens in the watchlist",
		}),

		SessionFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "fetches_total",
			Help:      "Total number of catalog page fetches by outcome (loaded, exhausted, failed, stale)",
		}, []string{"outcome"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordProviderRequest records a provider round trip. code is 0 when no
// response was received.
func RecordProviderRequest(endpoint string, code int, seconds float64) {
	DefaultMetrics.ProviderRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	DefaultMetrics.ProviderLatency.WithLabelValues(endpoint).Observe(seconds)
}

// RecordMutation records a persisted watchlist mutation and the resulting size.
func RecordMutation(op string, size int) {
	DefaultMetrics.WatchlistMutations.WithLabelValues(op).Inc()
	DefaultMetrics.WatchlistSize.Set(float64(size))
}

// RecordReload records a re-hydration from the store.
func RecordReload(size int) {
	DefaultMetrics.WatchlistReloads.Inc()
	DefaultMetrics.WatchlistSize.Set(float64(size))
}

// RecordSessionFetch records the outcome of a catalog page fetch.
func RecordSessionFetch(outcome string) {
	DefaultMetrics.SessionFetches.WithLabelValues(outcome).Inc()
}
