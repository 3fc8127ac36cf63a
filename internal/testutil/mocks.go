package testutil

import (
	"context"
	"eigenkey/internal/models"
	"eigenkey/internal/providers"
	"errors"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface with counters.
type MockMetrics struct {
	mu                   sync.Mutex
	Validations          map[string]int
	UsageEvents          map[string]int
	SharingAnomalies     int
	StorageWriteFailures int
	CacheHits            int
	CacheMisses          int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Validations: make(map[string]int), UsageEvents: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) IncValidations(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Validations[outcome]++
}
func (m *MockMetrics) IncUsageEvents(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UsageEvents[status]++
}
func (m *MockMetrics) IncSharingAnomalies() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SharingAnomalies++
}
func (m *MockMetrics) IncStorageWriteFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StorageWriteFailures++
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() { m.Closed = true }

// MockKeySource implements interfaces.KeySourceInterface.
type MockKeySource struct {
	mu     sync.Mutex
	Label  string
	List   []string
	Err    error
	Called int
}

func (m *MockKeySource) Name() string {
	if m.Label == "" {
		return "mock"
	}
	return m.Label
}

func (m *MockKeySource) Keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Called++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.List, nil
}

// MockKeyStore implements interfaces.KeyStateStoreInterface in memory.
// SaveErr simulates a read-only medium.
type MockKeyStore struct {
	mu      sync.Mutex
	State   models.KeyState
	LoadErr error
	SaveErr error
	Saves   int
}

var ErrReadOnly = errors.New("read-only file system")

func NewMockKeyStore() *MockKeyStore {
	return &MockKeyStore{State: make(models.KeyState)}
}

func (m *MockKeyStore) Load() (models.KeyState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(models.KeyState, len(m.State))
	if m.LoadErr != nil {
		return out, m.LoadErr
	}
	for k, v := range m.State {
		rec := *v
		out[k] = &rec
	}
	return out, nil
}

func (m *MockKeyStore) Save(state models.KeyState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saves++
	m.State = make(models.KeyState, len(state))
	for k, v := range state {
		rec := *v
		m.State[k] = &rec
	}
	return nil
}

func (m *MockKeyStore) Probe() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SaveErr
}

// MockTracker implements lifecycle.TrackerInterface with canned answers.
type MockTracker struct {
	mu            sync.Mutex
	Results       map[string]models.ValidationResult
	Anomaly       models.AnomalyResult
	Usage         []UsageCall
	AnomalyChecks int
	Size          int
	IsDegraded    bool
	ProbeErr      error
}

type UsageCall struct {
	Key    string
	Status models.UsageStatus
	Client models.ClientInfo
}

func (m *MockTracker) Validate(_ context.Context, key string) models.ValidationResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if res, ok := m.Results[key]; ok {
		return res
	}
	return models.ValidationResult{KeyMask: "invalid****"}
}

func (m *MockTracker) RecordUsage(key string, status models.UsageStatus, client models.ClientInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Usage = append(m.Usage, UsageCall{Key: key, Status: status, Client: client})
}

func (m *MockTracker) CheckSharingAnomaly(_ string) models.AnomalyResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnomalyChecks++
	return m.Anomaly
}

func (m *MockTracker) AllowListSize(_ context.Context) int { return m.Size }
func (m *MockTracker) Probe() error                        { return m.ProbeErr }
func (m *MockTracker) Degraded() bool                      { return m.IsDegraded }

// Statuses returns the recorded usage statuses in order.
func (m *MockTracker) Statuses() []models.UsageStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.UsageStatus, 0, len(m.Usage))
	for _, u := range m.Usage {
		out = append(out, u.Status)
	}
	return out
}
