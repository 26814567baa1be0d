package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getTestMetrics() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
}

// TestMetricsInitialization tests that all metrics are properly initialized
func TestMetricsInitialization(t *testing.T) {
	m := getTestMetrics()

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.DBConnectionsOpen)
	assert.NotNil(t, m.DBQueryDuration)
	assert.NotNil(t, m.ExternalAPIErrors)
	assert.NotNil(t, m.OrderingOperationsTotal)
	assert.NotNil(t, m.LockWaitDuration)
	assert.NotNil(t, m.LockBusyTotal)
	assert.NotNil(t, m.PositionsRepairedTotal)
	assert.NotNil(t, m.WorkspacesTotal)
	assert.NotNil(t, m.BoardsTotal)
	assert.NotNil(t, m.CardsTotal)
	assert.NotNil(t, m.JobRunsTotal)
	assert.NotNil(t, m.FilesDeletedTotal)
}

func TestNewWithRegistry_TwiceOnSameRegistryPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewWithRegistry(registry, zap.NewNop())

	assert.Panics(t, func() {
		NewWithRegistry(registry, zap.NewNop())
	})
}

func TestCategorizeStatus(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{409, "4xx"},
		{503, "5xx"},
		{100, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, categorizeStatus(tt.code), "code %d", tt.code)
	}
}

func TestShouldSkipEndpoint(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/metrics", true},
		{"/health", true},
		{"/ready", true},
		{"/api/health", true},
		{"/api/metrics", true},
		{"/swagger/index.html", true},
		{"/api/boards/:boardId", false},
		{"/api/boards/:boardId/health", false},
		{"/api/workspaces", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShouldSkipEndpoint(tt.path), tt.path)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry, zap.NewNop())

	m.RecordHTTPRequest("GET", "/api/boards/:boardId", 200, 0)
	m.RecordHTTPRequest("GET", "/api/boards/:boardId", 201, 0)
	m.RecordHTTPRequest("PATCH", "/api/cards/:cardId/move", 409, 0)

	assert.Equal(t, 2.0, counterVecValue(t, m.HTTPRequestsTotal, "GET", "/api/boards/:boardId", "2xx"))
	assert.Equal(t, 1.0, counterVecValue(t, m.HTTPRequestsTotal, "PATCH", "/api/cards/:cardId/move", "4xx"))

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
