package providers

import (
	"eigenkey/internal/structures"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTestRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	prevReg, prevGather := prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prevReg
		prometheus.DefaultGatherer = prevGather
	})
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	m.IncRequestsTotal("/access", 200)
	m.ObserveRequestDuration("/access", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncValidations("valid")
	m.IncUsageEvents("access")
	m.IncSharingAnomalies()
	m.IncStorageWriteFailures()
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_DomainCounters(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf).(*MetricsProvider)

	m.IncValidations("expired")
	m.IncValidations("expired")
	m.IncValidations("invalid")
	m.IncUsageEvents("blocked")
	m.IncSharingAnomalies()
	m.IncStorageWriteFailures()
	m.IncStorageWriteFailures()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.validationsTotal.WithLabelValues("expired")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.validationsTotal.WithLabelValues("invalid")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.usageEventsTotal.WithLabelValues("blocked")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.sharingAnomalies))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.storageWriteFailures))

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "eigenkey_validations_total")
	assert.Contains(t, names, "eigenkey_storage_write_failures_total")
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{301, "3xx"},
		{403, "4xx"},
		{429, "4xx"},
		{500, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
