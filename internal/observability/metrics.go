package observability

import (
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/parammap-backend/internal/platform/logger"
)

// Metrics is nil-safe: every method on a nil *Metrics is a no-op, so callers
// never branch on whether metrics are enabled.
type Metrics struct {
	reg *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	resolutions       *prometheus.CounterVec
	resolveLatency    prometheus.Histogram
	mappingMutations  *prometheus.CounterVec
	bulkItems         *prometheus.CounterVec
	historyAppendFail prometheus.Counter
	cacheLookups      *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide Metrics once. It returns nil when disabled.
func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("prometheus metrics initialized")
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
}

// NewMetrics registers every collector on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pm_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pm_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pm_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pm_resolutions_total",
			Help: "Resolution calls by outcome.",
		}, []string{"outcome"}),
		resolveLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pm_resolution_duration_seconds",
			Help:    "Resolution latency in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		mappingMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pm_mapping_mutations_total",
			Help: "Successful mapping mutations by change type.",
		}, []string{"change_type"}),
		bulkItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pm_bulk_upsert_items_total",
			Help: "Bulk upsert items by outcome status.",
		}, []string{"status"}),
		historyAppendFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pm_history_append_failures_total",
			Help: "History records that could not be written.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pm_mapping_cache_lookups_total",
			Help: "Mapping cache lookups by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.resolutions,
		m.resolveLatency,
		m.mappingMutations,
		m.bulkItems,
		m.historyAppendFail,
		m.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterDBStats exposes connection pool stats for sqlDB.
func (m *Metrics) RegisterDBStats(sqlDB *sql.DB, dbName string) {
	if m == nil || sqlDB == nil {
		return
	}
	_ = m.reg.Register(collectors.NewDBStatsCollector(sqlDB, dbName))
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveResolution records one resolve call; outcome is ok, not_found,
// invalid or error.
func (m *Metrics) ObserveResolution(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
	m.resolveLatency.Observe(dur.Seconds())
}

func (m *Metrics) IncMappingMutation(changeType string) {
	if m == nil {
		return
	}
	m.mappingMutations.WithLabelValues(changeType).Inc()
}

func (m *Metrics) IncBulkItem(status string) {
	if m == nil {
		return
	}
	m.bulkItems.WithLabelValues(status).Inc()
}

func (m *Metrics) IncHistoryAppendFailure() {
	if m == nil {
		return
	}
	m.historyAppendFail.Inc()
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
