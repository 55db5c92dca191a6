package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the scheduling engines.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	runTotal        *prometheus.CounterVec
	deficitTotal    *prometheus.CounterVec
	penaltyScore    *prometheus.HistogramVec
	exportTotal     *prometheus.CounterVec
	resultHits      prometheus.Counter
	resultMisses    prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
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

	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_run_duration_seconds",
		Help:    "Duration of schedule generation runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"engine"})

	runTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_runs_total",
		Help: "Total schedule generation runs by outcome",
	}, []string{"engine", "outcome"})

	deficitTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_deficit_courses_total",
		Help: "Courses that finished a run below their weekly target",
	}, []string{"engine"})

	penaltyScore := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_penalty_score",
		Help:    "Soft-constraint penalty score of generated timetables",
		Buckets: []float64{0, 5, 10, 20, 40, 80},
	}, []string{"engine"})

	exportTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_exports_total",
		Help: "Rendered timetable exports by format",
	}, []string{"format"})

	resultHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "result_store_hits_total",
		Help: "Result store lookups that found a stored run",
	})

	resultMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "result_store_misses_total",
		Help: "Result store lookups that found nothing",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, runDuration, runTotal,
		deficitTotal, penaltyScore, exportTotal, resultHits, resultMisses, dbQueryDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		runDuration:     runDuration,
		runTotal:        runTotal,
		deficitTotal:    deficitTotal,
		penaltyScore:    penaltyScore,
		exportTotal:     exportTotal,
		resultHits:      resultHits,
		resultMisses:    resultMisses,
		dbQueryDuration: dbQueryDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveScheduleRun records one engine run. Outcome is "full" when every
// course met its target, "deficit" otherwise, "error" when the run failed.
func (m *MetricsService) ObserveScheduleRun(engine, outcome string, duration time.Duration, deficits, penalty int) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(engine).Observe(duration.Seconds())
	m.runTotal.WithLabelValues(engine, outcome).Inc()
	if deficits > 0 {
		m.deficitTotal.WithLabelValues(engine).Add(float64(deficits))
	}
	if outcome != "error" {
		m.penaltyScore.WithLabelValues(engine).Observe(float64(penalty))
	}
}

// ObserveExport counts a rendered export.
func (m *MetricsService) ObserveExport(format string) {
	if m == nil {
		return
	}
	m.exportTotal.WithLabelValues(format).Inc()
}

// RecordResultLookup tracks result store hits and misses.
func (m *MetricsService) RecordResultLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.resultHits.Inc()
	} else {
		m.resultMisses.Inc()
	}
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}
