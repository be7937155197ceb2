// Package observability exposes application metrics over a dedicated
// prometheus registry.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// Metrics holds the application-level instruments.
type Metrics struct {
	registry *prometheus.Registry

	SnapshotRefreshes     *prometheus.CounterVec
	StaleResponsesDropped *prometheus.CounterVec
	DraftWarnings         *prometheus.CounterVec
	ValidationFailures    *prometheus.CounterVec
	OptimisticRollbacks   *prometheus.CounterVec
	SalesSubmitted        prometheus.Counter

	httpDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		SnapshotRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizcore_snapshot_refreshes_total",
			Help: "Snapshot refreshes by collection and data source.",
		}, []string{"collection", "source"}),
		StaleResponsesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizcore_stale_responses_dropped_total",
			Help: "Fetch results discarded because a newer refresh was already issued.",
		}, []string{"collection"}),
		DraftWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizcore_draft_warnings_total",
			Help: "Non-fatal draft transition warnings by kind.",
		}, []string{"kind"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizcore_sale_validation_failures_total",
			Help: "Sale submissions blocked by the validator, by reason.",
		}, []string{"reason"}),
		OptimisticRollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizcore_optimistic_rollbacks_total",
			Help: "Optimistic mutations rolled back after a remote failure.",
		}, []string{"operation"}),
		SalesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bizcore_sales_submitted_total",
			Help: "Sales accepted by the records API.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bizcore_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	registry.MustRegister(
		m.SnapshotRefreshes,
		m.StaleResponsesDropped,
		m.DraftWarnings,
		m.ValidationFailures,
		m.OptimisticRollbacks,
		m.SalesSubmitted,
		m.httpDuration,
	)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.httpDuration.
			WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Module wires the metrics registry.
var Module = fx.Module("observability",
	fx.Provide(NewMetrics),
)
