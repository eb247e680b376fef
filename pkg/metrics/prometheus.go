// Package metrics provides Prometheus metrics for the crease analysis service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Analysis
	framesAccepted  *prometheus.CounterVec
	framesDuplicate prometheus.Counter
	analyses        *prometheus.CounterVec
	analysisLatency *prometheus.HistogramVec
	headlineScore   *prometheus.HistogramVec
	recommendations *prometheus.CounterVec

	// Leaderboards
	leaderboardUpdates *prometheus.CounterVec
	leaderboardPlayers *prometheus.GaugeVec
	leaderboardLatency *prometheus.HistogramVec

	// Queue
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	queueEnqueued     prometheus.Counter
	queueDequeued     prometheus.Counter
	queueEnqueueError prometheus.Counter
	queueWait         prometheus.Histogram

	// Workers
	workerCount      prometheus.Gauge
	workerActive     prometheus.Gauge
	workerIdle       prometheus.Gauge
	workerLatency    prometheus.Histogram
	workerErrors     prometheus.Counter
	workerThroughput prometheus.Gauge

	// Sessions and history
	activeSessions   prometheus.Gauge
	sessionEvictions prometheus.Counter
	historyWrites    *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors and runtime
	errorsByComponent    *prometheus.CounterVec
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "crease",
		subsystem:        "analysis",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	b := m.histogramBuckets

	m.framesAccepted = auto.NewCounterVec(m.counter("frames_accepted_total", "Frames accepted for analysis"), []string{"mode"})
	m.framesDuplicate = auto.NewCounter(m.counter("frames_duplicate_total", "Frames rejected as already seen"))
	m.analyses = auto.NewCounterVec(m.counter("analyses_total", "Analyses by mode and outcome"), []string{"mode", "outcome"})
	m.analysisLatency = auto.NewHistogramVec(m.histogram("analysis_latency_milliseconds", "Time spent scoring one frame", b), []string{"mode"})
	m.headlineScore = auto.NewHistogramVec(
		m.histogram("headline_score", "Distribution of headline scores", prometheus.LinearBuckets(0, 10, 16)),
		[]string{"mode"},
	)
	m.recommendations = auto.NewCounterVec(m.counter("recommendations_total", "Coaching recommendations issued"), []string{"mode", "kind"})

	m.leaderboardUpdates = auto.NewCounterVec(m.counter("leaderboard_updates_total", "New personal bests recorded"), []string{"board"})
	m.leaderboardPlayers = auto.NewGaugeVec(m.gauge("leaderboard_players", "Players ranked on a board"), []string{"board"})
	m.leaderboardLatency = auto.NewHistogramVec(
		m.histogram("leaderboard_operation_milliseconds", "Leaderboard operation latency", b),
		[]string{"board", "op"},
	)

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Frames waiting for a worker"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_ratio", "Queue fill ratio"))
	m.queueEnqueued = auto.NewCounter(m.counter("queue_enqueued_total", "Frames enqueued"))
	m.queueDequeued = auto.NewCounter(m.counter("queue_dequeued_total", "Frames dequeued"))
	m.queueEnqueueError = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Frames refused by a full or closed queue"))
	m.queueWait = auto.NewHistogram(m.histogram("queue_wait_milliseconds", "Time a frame waited in the queue", b))

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Configured workers"))
	m.workerActive = auto.NewGauge(m.gauge("worker_active", "Workers processing a frame"))
	m.workerIdle = auto.NewGauge(m.gauge("worker_idle", "Workers waiting for a frame"))
	m.workerLatency = auto.NewHistogram(m.histogram("worker_processing_milliseconds", "End-to-end worker handling time per frame", b))
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Frames a worker failed to handle"))
	m.workerThroughput = auto.NewGauge(m.gauge("worker_frames_per_second", "Recent frames handled per second"))

	m.activeSessions = auto.NewGauge(m.gauge("active_sessions", "Capture sessions with a live history window"))
	m.sessionEvictions = auto.NewCounter(m.counter("session_evictions_total", "Sessions dropped to stay under the cap"))
	m.historyWrites = auto.NewCounterVec(m.counter("history_writes_total", "Analysis history writes by outcome"), []string{"outcome"})

	m.httpRequests = auto.NewCounterVec(
		m.counter("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogram("http_request_duration_milliseconds", "HTTP request duration", b),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_total", "Errors by component and type"), []string{"component", "type"})
	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_bytes", "Heap bytes in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutines", "Number of goroutines"))
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

func on() bool { return globalManager.enabled }

// RecordFrameAccepted counts a frame accepted for analysis.
func RecordFrameAccepted(mode string) {
	if on() {
		globalManager.framesAccepted.WithLabelValues(mode).Inc()
	}
}

// RecordFrameDuplicate counts a frame rejected as already seen.
func RecordFrameDuplicate() {
	if on() {
		globalManager.framesDuplicate.Inc()
	}
}

// RecordAnalysis records the outcome and latency of one scoring call.
func RecordAnalysis(mode, outcome string, d time.Duration) {
	if !on() {
		return
	}
	globalManager.analyses.WithLabelValues(mode, outcome).Inc()
	globalManager.analysisLatency.WithLabelValues(mode).Observe(ms(d))
}

// RecordHeadline observes a headline score.
func RecordHeadline(mode string, score float64) {
	if on() {
		globalManager.headlineScore.WithLabelValues(mode).Observe(score)
	}
}

// RecordRecommendation counts an issued coaching message.
func RecordRecommendation(mode, kind string) {
	if on() {
		globalManager.recommendations.WithLabelValues(mode, kind).Inc()
	}
}

// RecordLeaderboardUpdate counts a new personal best.
func RecordLeaderboardUpdate(board string) {
	if on() {
		globalManager.leaderboardUpdates.WithLabelValues(board).Inc()
	}
}

// UpdateLeaderboardPlayers sets the number of ranked players on a board.
func UpdateLeaderboardPlayers(board string, n int) {
	if on() {
		globalManager.leaderboardPlayers.WithLabelValues(board).Set(float64(n))
	}
}

// RecordLeaderboardOperation observes the latency of a leaderboard call.
func RecordLeaderboardOperation(board, op string, d time.Duration) {
	if on() {
		globalManager.leaderboardLatency.WithLabelValues(board, op).Observe(ms(d))
	}
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if on() {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if on() {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	if on() {
		globalManager.queueUtilization.Set(utilization)
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if on() {
		globalManager.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if on() {
		globalManager.queueDequeued.Inc()
	}
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if on() {
		globalManager.queueEnqueueError.Inc()
	}
}

// RecordQueueWait observes how long a frame sat in the queue.
func RecordQueueWait(d time.Duration) {
	if on() {
		globalManager.queueWait.Observe(ms(d))
	}
}

// UpdateWorkerCount sets the configured number of workers.
func UpdateWorkerCount(count int) {
	if on() {
		globalManager.workerCount.Set(float64(count))
	}
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	if on() {
		globalManager.workerActive.Set(float64(count))
	}
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	if on() {
		globalManager.workerIdle.Set(float64(count))
	}
}

// UpdateWorkerThroughput sets the recent frames-per-second rate.
func UpdateWorkerThroughput(rate float64) {
	if on() {
		globalManager.workerThroughput.Set(rate)
	}
}

// RecordWorkerProcessingLatency observes a worker's handling time.
func RecordWorkerProcessingLatency(d time.Duration) {
	if on() {
		globalManager.workerLatency.Observe(ms(d))
	}
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if on() {
		globalManager.workerErrors.Inc()
	}
}

// UpdateActiveSessions sets the number of tracked sessions.
func UpdateActiveSessions(n int) {
	if on() {
		globalManager.activeSessions.Set(float64(n))
	}
}

// RecordSessionEviction counts a session dropped for capacity.
func RecordSessionEviction() {
	if on() {
		globalManager.sessionEvictions.Inc()
	}
}

// RecordHistoryWrite counts an analysis history write by outcome.
func RecordHistoryWrite(outcome string) {
	if on() {
		globalManager.historyWrites.WithLabelValues(outcome).Inc()
	}
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, d time.Duration) {
	if !on() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms(d))
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if on() {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if on() {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if on() {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// SetEnabled switches recording on or off for the global manager.
func SetEnabled(enabled bool) { globalManager.enabled = enabled }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
