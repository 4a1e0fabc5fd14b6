package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for Groundstation
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Decode Metrics
	RecordsDecodedTotal  prometheus.CounterVec
	DecodeDuration       prometheus.Histogram
	SamplesAcceptedTotal prometheus.Counter
	SamplesRejectedTotal prometheus.Counter
	UnsupportedNodes     prometheus.Counter

	// Portal Metrics
	PortalRequestsTotal   prometheus.CounterVec
	PortalRequestDuration prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundstation_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "groundstation_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "groundstation_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Decode Metrics
		RecordsDecodedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundstation_records_decoded_total",
				Help: "Route blobs decoded, by outcome (ok, empty, malformed)",
			},
			[]string{"outcome"},
		),
		DecodeDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "groundstation_decode_duration_seconds",
				Help:    "Route blob decode time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		SamplesAcceptedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "groundstation_samples_accepted_total",
				Help: "Telemetry samples that passed coordinate and region filtering",
			},
		),
		SamplesRejectedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "groundstation_samples_rejected_total",
				Help: "Telemetry samples dropped by coordinate or region filtering",
			},
		),
		UnsupportedNodes: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "groundstation_unsupported_wire_nodes_total",
				Help: "Wire nodes skipped because of an unsupported wire type",
			},
		),

		// Portal Metrics
		PortalRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundstation_portal_requests_total",
				Help: "Requests to the browser-proxy portal sidecar, by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		PortalRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "groundstation_portal_request_duration_seconds",
				Help:    "Portal sidecar request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundstation_cache_hits_total",
				Help: "Cache hits by cache key type",
			},
			[]string{"cache_type"},
		),
		CacheMissesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groundstation_cache_misses_total",
				Help: "Cache misses by cache key type",
			},
			[]string{"cache_type"},
		),
	}
}
