// Package metrics provides Prometheus metrics for the Elysian rating service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the rating service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Rating flow metrics
	ratingsStarted     prometheus.Counter
	ratingsFinalized   prometheus.Counter
	comparisonsTotal   prometheus.Counter
	comparisonsPerFlow prometheus.Histogram
	displayScores      prometheus.Histogram
	sessionsActive     prometheus.Gauge
	sessionsExpired    prometheus.Counter
	sessionsReplaced   prometheus.Counter
	sessionMissing     prometheus.Counter

	// Commit pipeline metrics
	commitQueueSize        prometheus.Gauge
	commitQueueCapacity    prometheus.Gauge
	commitQueueUtilization prometheus.Gauge
	commitsApplied         prometheus.Counter
	commitErrors           prometheus.Counter
	commitFallbacks        prometheus.Counter
	commitWorkers          prometheus.Gauge

	// Repository metrics
	repositoryReadLatency  prometheus.Histogram
	repositoryWriteLatency prometheus.Histogram
	repositoryErrors       prometheus.Counter

	// Recommendation metrics
	recommendations      prometheus.Counter
	recommendationErrors prometheus.Counter

	// Image lookup metrics
	imageLookups      prometheus.Counter
	imageLookupMisses prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry so the default Go collectors stay out of /healthz output.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "elysian",
		subsystem:        "rating",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.ratingsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flows_started_total",
		Help:      "Total number of rating flows started",
	})

	m.ratingsFinalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flows_finalized_total",
		Help:      "Total number of rating flows that reached done",
	})

	m.comparisonsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparisons_total",
		Help:      "Total number of pairwise comparisons submitted",
	})

	m.comparisonsPerFlow = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparisons_per_flow",
		Help:      "Histogram of comparisons needed to finalize a flow",
		Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
	})

	m.displayScores = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "display_score",
		Help:      "Histogram of final 0-10 display scores",
		Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	})

	m.sessionsActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_active",
		Help:      "Current number of in-progress rating sessions",
	})

	m.sessionsExpired = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_expired_total",
		Help:      "Total number of sessions reclaimed by the expiry sweep",
	})

	m.sessionsReplaced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_replaced_total",
		Help:      "Total number of sessions abandoned by starting a new flow",
	})

	m.sessionMissing = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_missing_total",
		Help:      "Total number of comparisons submitted without an active session",
	})

	m.commitQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commit_queue_size",
		Help:      "Current number of queued rating commits",
	})

	m.commitQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commit_queue_capacity",
		Help:      "Configured capacity of the commit queue",
	})

	m.commitQueueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commit_queue_utilization",
		Help:      "Commit queue fill ratio between 0 and 1",
	})

	m.commitsApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commits_applied_total",
		Help:      "Total number of finalized ratings persisted",
	})

	m.commitErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commit_errors_total",
		Help:      "Total number of failed persistence attempts",
	})

	m.commitFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commit_fallbacks_total",
		Help:      "Total number of commits written synchronously due to queue backpressure",
	})

	m.commitWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commit_workers",
		Help:      "Current number of commit workers",
	})

	m.repositoryReadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_read_latency_milliseconds",
		Help:      "Histogram of document read latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_write_latency_milliseconds",
		Help:      "Histogram of document write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_errors_total",
		Help:      "Total number of document store errors",
	})

	m.recommendations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_total",
		Help:      "Total number of next-city recommendations served",
	})

	m.recommendationErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendation_errors_total",
		Help:      "Total number of failed recommendation requests",
	})

	m.imageLookups = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "image_lookups_total",
		Help:      "Total number of city image lookups",
	})

	m.imageLookupMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "image_lookup_misses_total",
		Help:      "Total number of city image lookups with no result",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// GetRegistry returns the registry backing the global manager,
// suitable for promhttp.HandlerFor.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Global helpers delegating to the singleton manager.

func RecordFlowStarted()   { globalManager.ratingsStarted.Inc() }
func RecordFlowFinalized() { globalManager.ratingsFinalized.Inc() }

func RecordComparison() { globalManager.comparisonsTotal.Inc() }

func RecordComparisonsPerFlow(n int) {
	globalManager.comparisonsPerFlow.Observe(float64(n))
}

func RecordDisplayScore(score float64) {
	globalManager.displayScores.Observe(score)
}

func UpdateActiveSessions(n int) { globalManager.sessionsActive.Set(float64(n)) }
func RecordSessionExpired(n int) { globalManager.sessionsExpired.Add(float64(n)) }
func RecordSessionReplaced()     { globalManager.sessionsReplaced.Inc() }
func RecordSessionMissing()      { globalManager.sessionMissing.Inc() }

func UpdateCommitQueueSize(n int)     { globalManager.commitQueueSize.Set(float64(n)) }
func UpdateCommitQueueCapacity(n int) { globalManager.commitQueueCapacity.Set(float64(n)) }

func UpdateCommitQueueUtilization(ratio float64) {
	globalManager.commitQueueUtilization.Set(ratio)
}

func RecordCommitApplied()      { globalManager.commitsApplied.Inc() }
func RecordCommitError()        { globalManager.commitErrors.Inc() }
func RecordCommitFallback()     { globalManager.commitFallbacks.Inc() }
func UpdateCommitWorkers(n int) { globalManager.commitWorkers.Set(float64(n)) }

func RecordRepositoryReadLatency(ms float64)  { globalManager.repositoryReadLatency.Observe(ms) }
func RecordRepositoryWriteLatency(ms float64) { globalManager.repositoryWriteLatency.Observe(ms) }
func RecordRepositoryError()                  { globalManager.repositoryErrors.Inc() }

func RecordRecommendation()      { globalManager.recommendations.Inc() }
func RecordRecommendationError() { globalManager.recommendationErrors.Inc() }

func RecordImageLookup()     { globalManager.imageLookups.Inc() }
func RecordImageLookupMiss() { globalManager.imageLookupMisses.Inc() }

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}
