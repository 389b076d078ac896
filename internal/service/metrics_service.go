package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tristudio/studio-scheduler-api/internal/models"
)

// MetricsService owns the Prometheus registry and keeps lightweight
// atomic aggregates for the analytics endpoints. All methods tolerate a
// nil receiver so instrumentation stays optional in tests.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	placements      *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	optimizeRuns    *prometheus.CounterVec
	optimizeClasses prometheus.Histogram
	exportJobs      *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
	optimizeRunCount     uint64
	lastDraftSize        uint64
	lastConflictCount    uint64
}

// NewMetricsService registers all collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_placements_total",
		Help: "Classes placed by the schedule constructor, by phase",
	}, []string{"phase"})

	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_rejections_total",
		Help: "Candidate placements rejected by the eligibility chain, by reason",
	}, []string{"reason"})

	optimizeRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_runs_total",
		Help: "Completed optimization runs, by draft source",
	}, []string{"source"})

	optimizeClasses := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_draft_classes",
		Help:    "Number of classes in finished drafts",
		Buckets: []float64{0, 10, 25, 50, 75, 100, 150, 200},
	})

	exportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_jobs_total",
		Help: "Timetable export jobs, by format and outcome",
	}, []string{"format", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, dbQueryDuration,
		cacheHits, cacheMisses, placements, rejections, optimizeRuns,
		optimizeClasses, exportJobs, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		dbQueryDuration: dbQueryDuration,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		placements:      placements,
		rejections:      rejections,
		optimizeRuns:    optimizeRuns,
		optimizeClasses: optimizeClasses,
		exportJobs:      exportJobs,
	}
}

// Handler exposes the scrape endpoint for the private registry.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, label).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, label).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveDBQuery records one database query timing under a stable label.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

func (m *MetricsService) IncCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
	atomic.AddUint64(&m.cacheHitCount, 1)
}

func (m *MetricsService) IncCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// IncPlacement counts one committed placement for the given phase.
func (m *MetricsService) IncPlacement(phase string) {
	if m == nil {
		return
	}
	m.placements.WithLabelValues(phase).Inc()
}

// IncRejection counts one eligibility-chain rejection for the reason.
func (m *MetricsService) IncRejection(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

// ObserveOptimizeRun records one finished draft-and-validate cycle.
func (m *MetricsService) ObserveOptimizeRun(source string, classes, conflicts int) {
	if m == nil {
		return
	}
	m.optimizeRuns.WithLabelValues(source).Inc()
	m.optimizeClasses.Observe(float64(classes))
	atomic.AddUint64(&m.optimizeRunCount, 1)
	atomic.StoreUint64(&m.lastDraftSize, uint64(classes))
	atomic.StoreUint64(&m.lastConflictCount, uint64(conflicts))
}

// IncExportJob counts one export job outcome.
func (m *MetricsService) IncExportJob(format, outcome string) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(format, outcome).Inc()
}

// Snapshot returns the aggregate counters for the analytics surface.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		OptimizeRuns:             atomic.LoadUint64(&m.optimizeRunCount),
		LastDraftClasses:         atomic.LoadUint64(&m.lastDraftSize),
		LastDraftConflicts:       atomic.LoadUint64(&m.lastConflictCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
