package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	namespace = "itrun_api"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBConnectionsOpen        prometheus.Gauge
	DBConnectionsInUse       prometheus.Gauge
	DBConnectionsIdle        prometheus.Gauge
	DBConnectionsMax         prometheus.Gauge
	DBConnectionWaitTotal    prometheus.Counter
	DBConnectionWaitDuration prometheus.Counter
	DBQueryDuration          *prometheus.HistogramVec
	DBQueryErrors            *prometheus.CounterVec

	// Object storage metrics
	ExternalAPIRequestDuration *prometheus.HistogramVec
	ExternalAPIRequestsTotal   *prometheus.CounterVec
	ExternalAPIErrors          *prometheus.CounterVec

	// Ordering metrics
	OrderingOperationsTotal *prometheus.CounterVec
	LockWaitDuration        *prometheus.HistogramVec
	LockBusyTotal           *prometheus.CounterVec
	PositionsRepairedTotal  *prometheus.CounterVec

	// Business metrics
	WorkspacesTotal       prometheus.Gauge
	BoardsTotal           prometheus.Gauge
	CardsTotal            prometheus.Gauge
	PendingFileDeletions  prometheus.Gauge
	WorkspaceCreatedTotal prometheus.Counter
	BoardCreatedTotal     prometheus.Counter
	CardCreatedTotal      prometheus.Counter

	// Job metrics
	JobRunsTotal      *prometheus.CounterVec
	FilesDeletedTotal *prometheus.CounterVec

	// sql.DBStats counters are cumulative; only the growth is added
	statsMu          sync.Mutex
	lastWaitCount    int64
	lastWaitDuration float64

	logger *zap.Logger
}

// New creates and registers all metrics with the default registry
func New(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)

	if logger == nil {
		logger = zap.NewNop()
	}

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	histogramVec := func(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
		return factory.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: name, Help: help, Buckets: buckets}, labels)
	}

	return &Metrics{
		HTTPRequestsTotal: counterVec("http_requests_total",
			"Total number of HTTP requests", "method", "endpoint", "status"),
		HTTPRequestDuration: histogramVec("http_request_duration_seconds",
			"HTTP request duration in seconds",
			[]float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}, "method", "endpoint"),

		DBConnectionsOpen:  gauge("db_connections_open", "Current number of open database connections"),
		DBConnectionsInUse: gauge("db_connections_in_use", "Current number of in-use database connections"),
		DBConnectionsIdle:  gauge("db_connections_idle", "Current number of idle database connections"),
		DBConnectionsMax:   gauge("db_connections_max", "Maximum number of open database connections configured"),
		DBConnectionWaitTotal: counter("db_connection_wait_total",
			"Total number of times waited for a database connection"),
		DBConnectionWaitDuration: counter("db_connection_wait_duration_seconds_total",
			"Total duration waited for database connections in seconds"),
		DBQueryDuration: histogramVec("db_query_duration_seconds",
			"Database query duration in seconds",
			[]float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}, "operation", "table"),
		DBQueryErrors: counterVec("db_query_errors_total",
			"Total number of database query errors", "operation", "table"),

		ExternalAPIRequestDuration: histogramVec("external_api_request_duration_seconds",
			"Object storage request duration in seconds",
			[]float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}, "endpoint", "status"),
		ExternalAPIRequestsTotal: counterVec("external_api_requests_total",
			"Total number of object storage requests", "endpoint", "method", "status"),
		ExternalAPIErrors: counterVec("external_api_errors_total",
			"Total number of object storage errors", "endpoint", "error_type"),

		OrderingOperationsTotal: counterVec("ordering_operations_total",
			"Committed position operations", "scope", "op"),
		LockWaitDuration: histogramVec("lock_wait_seconds",
			"Time spent acquiring container locks",
			[]float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 3}, "scope"),
		LockBusyTotal: counterVec("lock_busy_total",
			"Operations rejected because a container lock stayed busy", "scope"),
		PositionsRepairedTotal: counterVec("positions_repaired_total",
			"Rows whose position was rewritten by the repair job", "scope"),

		WorkspacesTotal:       gauge("workspaces_total", "Total number of workspaces"),
		BoardsTotal:           gauge("boards_total", "Total number of boards"),
		CardsTotal:            gauge("cards_total", "Total number of cards"),
		PendingFileDeletions:  gauge("pending_file_deletions", "Object keys waiting for deletion"),
		WorkspaceCreatedTotal: counter("workspace_created_total", "Total number of workspace creation events"),
		BoardCreatedTotal:     counter("board_created_total", "Total number of board creation events"),
		CardCreatedTotal:      counter("card_created_total", "Total number of card creation events"),

		JobRunsTotal: counterVec("job_runs_total",
			"Background job runs", "job", "status"),
		FilesDeletedTotal: counterVec("files_deleted_total",
			"Object deletions attempted by the cleanup job", "status"),

		logger: logger,
	}
}

// safeExecute wraps metric operations with panic recovery
func (m *Metrics) safeExecute(operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Panic in metrics operation",
				zap.String("operation", operation),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
