// Package metrics provides Prometheus metrics for the workbook tracing service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evicted session reasons.
const (
	EvictReasonExpired = "expired"
	EvictReasonDeleted = "deleted"
)

// Manager owns the service's Prometheus collectors.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Sessions
	sessionsCreated prometheus.Counter
	sessionsActive  prometheus.Gauge
	sessionsEvicted *prometheus.CounterVec

	// Capture
	pointerEvents    *prometheus.CounterVec
	capturedPoints   prometheus.Counter
	duplicateBatches prometheus.Counter

	// Scoring
	checks         prometheus.Counter
	stars          *prometheus.CounterVec
	coverage       prometheus.Histogram
	scoringLatency prometheus.Histogram
	matchingChecks *prometheus.CounterVec

	// Rendering
	snapshotLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Streaming
	websocketConnections prometheus.Gauge
	websocketMessages    *prometheus.CounterVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

// customRegistry keeps the default Go collectors out of /metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "workbook",
		subsystem:        "tracing",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.sessionsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sessions_created_total",
		Help:        "Total number of drawing sessions created",
		ConstLabels: m.constLabels,
	})

	m.sessionsActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sessions_active",
		Help:        "Number of live drawing sessions",
		ConstLabels: m.constLabels,
	})

	m.sessionsEvicted = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "sessions_evicted_total",
			Help:        "Total number of sessions removed, by reason",
			ConstLabels: m.constLabels,
		},
		[]string{"reason"},
	)

	m.pointerEvents = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "pointer_events_total",
			Help:        "Pointer events received, by kind and outcome",
			ConstLabels: m.constLabels,
		},
		[]string{"kind", "outcome"},
	)

	m.capturedPoints = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "captured_points_total",
		Help:        "Total number of points appended to drawn paths",
		ConstLabels: m.constLabels,
	})

	m.duplicateBatches = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duplicate_batches_total",
		Help:        "Event batches skipped because their id was already applied",
		ConstLabels: m.constLabels,
	})

	m.checks = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "checks_total",
		Help:        "Total number of tracing checks",
		ConstLabels: m.constLabels,
	})

	m.stars = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "stars_awarded_total",
			Help:        "Checks by awarded star tier",
			ConstLabels: m.constLabels,
		},
		[]string{"stars"},
	)

	m.coverage = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "coverage_percent",
		Help:        "Distribution of tracing coverage percentages",
		Buckets:     prometheus.LinearBuckets(10, 10, 10),
		ConstLabels: m.constLabels,
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scoring_latency_milliseconds",
		Help:        "Time spent scoring a drawn path",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100},
		ConstLabels: m.constLabels,
	})

	m.matchingChecks = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "matching_checks_total",
			Help:        "Matching page checks, by activity and completion",
			ConstLabels: m.constLabels,
		},
		[]string{"activity", "complete"},
	)

	m.snapshotLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "snapshot_render_milliseconds",
		Help:        "Time spent rasterizing session snapshots",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.websocketConnections = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "websocket_connections",
		Help:        "Number of open pointer streams",
		ConstLabels: m.constLabels,
	})

	m.websocketMessages = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "websocket_messages_total",
			Help:        "Pointer stream messages, by direction",
			ConstLabels: m.constLabels,
		},
		[]string{"direction"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_component_total",
			Help:        "Total number of errors by component",
			ConstLabels: m.constLabels,
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// RecordSessionCreated counts a new drawing session.
func RecordSessionCreated() {
	globalManager.sessionsCreated.Inc()
}

// UpdateActiveSessions sets the live session gauge.
func UpdateActiveSessions(count int) {
	globalManager.sessionsActive.Set(float64(count))
}

// RecordSessionEvicted counts a removed session.
func RecordSessionEvicted(reason string) {
	globalManager.sessionsEvicted.WithLabelValues(reason).Inc()
}

// RecordPointerEvent counts a pointer event by kind and outcome.
func RecordPointerEvent(kind, outcome string) {
	globalManager.pointerEvents.WithLabelValues(kind, outcome).Inc()
}

// RecordCapturedPoints adds n appended points.
func RecordCapturedPoints(n int) {
	if n > 0 {
		globalManager.capturedPoints.Add(float64(n))
	}
}

// RecordDuplicateBatch counts a skipped batch.
func RecordDuplicateBatch() {
	globalManager.duplicateBatches.Inc()
}

// RecordCheck records the outcome of a tracing check.
func RecordCheck(percent, stars int) {
	globalManager.checks.Inc()
	globalManager.stars.WithLabelValues(strconv.Itoa(stars)).Inc()
	globalManager.coverage.Observe(float64(percent))
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordMatchingCheck counts a matching page check.
func RecordMatchingCheck(activity string, complete bool) {
	globalManager.matchingChecks.WithLabelValues(activity, strconv.FormatBool(complete)).Inc()
}

// RecordSnapshotLatency records snapshot rendering time in milliseconds.
func RecordSnapshotLatency(latencyMs float64) {
	globalManager.snapshotLatency.Observe(latencyMs)
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// WebsocketOpened increments the open stream gauge.
func WebsocketOpened() {
	globalManager.websocketConnections.Inc()
}

// WebsocketClosed decrements the open stream gauge.
func WebsocketClosed() {
	globalManager.websocketConnections.Dec()
}

// RecordWebsocketMessage counts a stream message; direction is "in" or "out".
func RecordWebsocketMessage(direction string) {
	globalManager.websocketMessages.WithLabelValues(direction).Inc()
}

// RecordErrorByComponent records errors by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage updates system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
