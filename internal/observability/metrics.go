package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dashboard.
type Metrics struct {
	// Upstream backend calls.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint, outcome={success,network,status,decode,circuit_open}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint

	// Client state.
	PinnedLocations prometheus.Gauge
	QueryRejections *prometheus.CounterVec // labels: reason

	// Alert refresh job.
	AlertRefreshes *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates all collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "upstream_requests_total",
			Help:      "Backend requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_dashboard",
			Name:      "upstream_request_duration_seconds",
			Help:      "Backend request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		PinnedLocations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_dashboard",
			Name:      "pinned_locations",
			Help:      "Number of pinned locations.",
		}),
		QueryRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "query_rejections_total",
			Help:      "Location searches rejected before reaching the backend, by reason.",
		}, []string{"reason"}),
		AlertRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_dashboard",
			Name:      "alert_refreshes_total",
			Help:      "Scheduled alert refreshes by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.PinnedLocations,
		m.QueryRejections,
		m.AlertRefreshes,
	)

	return m
}

// NewMetricsForTesting registers against a private registry so tests can
// create as many instances as they like.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
