// Package metrics exposes Prometheus instrumentation.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "phonebook"

// Metrics holds the collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	numbersCreated    *prometheus.CounterVec
	numbersDeleted    prometheus.Counter
	importsCompleted  *prometheus.CounterVec
	importItems       *prometheus.CounterVec
	importBatchSize   prometheus.Histogram
	normalizeRequests *prometheus.CounterVec
}

// New creates a registry with Go and process collectors plus the
// application metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		numbersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "phone_numbers_created_total",
				Help:      "Phone numbers stored, by source.",
			},
			[]string{"source"},
		),
		numbersDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "phone_numbers_deleted_total",
				Help:      "Phone numbers deleted.",
			},
		),
		importsCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bulk_imports_total",
				Help:      "Completed bulk imports, by source.",
			},
			[]string{"source"},
		),
		importItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bulk_import_items_total",
				Help:      "Bulk import items by outcome (imported or an error code).",
			},
			[]string{"outcome"},
		),
		importBatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bulk_import_batch_size",
				Help:      "Number of items per bulk import.",
				Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000},
			},
		),
		normalizeRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "normalize_verdicts_total",
				Help:      "Validation verdicts produced by preview and check endpoints.",
			},
			[]string{"reason"},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latencies by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// PhoneNumberCreated counts a stored number.
func (m *Metrics) PhoneNumberCreated(source string) {
	m.numbersCreated.WithLabelValues(source).Inc()
}

// PhoneNumberDeleted counts a deleted number.
func (m *Metrics) PhoneNumberDeleted() {
	m.numbersDeleted.Inc()
}

// BulkImportCompleted records the outcome of one import.
func (m *Metrics) BulkImportCompleted(source string, total, successful int, errorCodes map[string]int) {
	m.importsCompleted.WithLabelValues(source).Inc()
	m.importBatchSize.Observe(float64(total))
	m.importItems.WithLabelValues("imported").Add(float64(successful))
	for code, n := range errorCodes {
		m.importItems.WithLabelValues(code).Add(float64(n))
	}
}

// Verdict counts one validation verdict by reason.
func (m *Metrics) Verdict(reason string) {
	m.normalizeRequests.WithLabelValues(reason).Inc()
}
