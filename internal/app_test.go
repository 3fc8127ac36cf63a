package internal

import (
	"eigenkey/internal/controllers"
	"eigenkey/internal/models"
	"eigenkey/internal/services"
	"eigenkey/internal/structures"
	"eigenkey/internal/testutil"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appTestScheduler struct {
	inits, stops int
}

func (s *appTestScheduler) Init()       { s.inits++ }
func (s *appTestScheduler) Stop()       { s.stops++ }
func (s *appTestScheduler) Roll() error { return nil }

type countingMetrics struct {
	*testutil.MockMetrics
	endpoints []string
}

func (m *countingMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.endpoints = append(m.endpoints, endpoint)
}

func newTestApp(t *testing.T, metricsEnabled bool) (*App, *testutil.MockTracker, *countingMetrics) {
	t.Helper()
	tracker := &testutil.MockTracker{
		Results: map[string]models.ValidationResult{
			"EF-26Q1-A9F4KZ2M": {Valid: true, KeyMask: "EF-26Q1-****KZ2M", DaysRemaining: 30},
		},
		Size: 3,
	}
	cache := testutil.NewMockCache()
	logger := &testutil.MockLogger{}
	svc := services.NewAccessService(tracker, cache, logger)
	conf := &structures.Config{
		AppName:   "EigenKey",
		WebServer: structures.Server{Host: "127.0.0.1", Port: 8080},
		Metrics:   structures.MetricsConfig{Enabled: metricsEnabled},
	}
	metrics := &countingMetrics{MockMetrics: testutil.NewMockMetrics()}
	router := InitRoutes(controllers.NewApiController(logger, svc, cache), conf)

	app := NewApp(controllers.NewHealthController(svc), &appTestScheduler{}, svc, conf, logger, router, metrics)
	return app, tracker, metrics
}

func TestNewApp_ServerAddress(t *testing.T) {
	app, _, _ := newTestApp(t, false)
	assert.Equal(t, "127.0.0.1:8080", app.WebServer.Addr)
}

func TestNewApp_HealthNotInstrumented(t *testing.T) {
	app, _, metrics := newTestApp(t, false)

	rr := httptest.NewRecorder()
	app.WebServer.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(3), resp["allowlist_size"])
	assert.Empty(t, metrics.endpoints)
}

func TestNewApp_AccessFlowThroughMux(t *testing.T) {
	app, tracker, metrics := newTestApp(t, false)

	req := httptest.NewRequest(http.MethodPost, "/access", strings.NewReader(`{"key":"EF-26Q1-A9F4KZ2M","page":"signal"}`))
	rr := httptest.NewRecorder()
	app.WebServer.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []models.UsageStatus{models.StatusAccess}, tracker.Statuses())
	assert.Equal(t, []string{"/access"}, metrics.endpoints)
}

func TestNewApp_UnknownPathLabelledOther(t *testing.T) {
	app, _, metrics := newTestApp(t, false)

	rr := httptest.NewRecorder()
	app.WebServer.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/wp-login.php", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, []string{"other"}, metrics.endpoints)
}

func TestNewApp_MetricsEndpointToggle(t *testing.T) {
	app, _, _ := newTestApp(t, true)
	rr := httptest.NewRecorder()
	app.WebServer.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	app, _, _ = newTestApp(t, false)
	rr = httptest.NewRecorder()
	app.WebServer.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
