package providers

import (
	"eigenkey/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncValidations(outcome string)
	IncUsageEvents(status string)
	IncSharingAnomalies()
	IncStorageWriteFailures()
}

type MetricsProvider struct {
	requestsTotal        *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	cacheHits            prometheus.Counter
	cacheMisses          prometheus.Counter
	validationsTotal     *prometheus.CounterVec
	usageEventsTotal     *prometheus.CounterVec
	sharingAnomalies     prometheus.Counter
	storageWriteFailures prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncValidations(outcome string) {
	m.validationsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncUsageEvents(status string) {
	m.usageEventsTotal.WithLabelValues(status).Inc()
}

func (m *MetricsProvider) IncSharingAnomalies() {
	m.sharingAnomalies.Inc()
}

func (m *MetricsProvider) IncStorageWriteFailures() {
	m.storageWriteFailures.Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eigenkey_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eigenkey_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eigenkey_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eigenkey_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		validationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eigenkey_validations_total",
			Help: "Key validations by outcome (valid, first_use, expired, invalid)",
		}, []string{"outcome"}),

		usageEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eigenkey_usage_events_total",
			Help: "Usage events recorded by status",
		}, []string{"status"}),

		sharingAnomalies: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eigenkey_sharing_anomalies_total",
			Help: "Total number of sharing anomalies detected",
		}),

		storageWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eigenkey_storage_write_failures_total",
			Help: "Failed writes to the key state file or usage log",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncValidations(_ string)                          {}
func (n *noopMetrics) IncUsageEvents(_ string)                          {}
func (n *noopMetrics) IncSharingAnomalies()                             {}
func (n *noopMetrics) IncStorageWriteFailures()                         {}
