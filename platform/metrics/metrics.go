// Package metrics registers the Prometheus collectors used across the service
// and exposes them over HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing,
// so packages can be used without a registry in tests.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	httpInFlight   prometheus.Gauge
	lookups        *prometheus.CounterVec
	sourceDuration *prometheus.HistogramVec
	sourceErrors   *prometheus.CounterVec
	cacheResults   *prometheus.CounterVec
	historyRows    prometheus.Counter
	historyFlushes *prometheus.CounterVec
}

// New registers the collectors on reg. Passing a fresh prometheus.NewRegistry
// keeps tests isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		}),
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "callerid_lookups_total",
			Help: "Consolidated lookups partitioned by the source that supplied the name",
		}, []string{"name_source"}),
		sourceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "callerid_source_duration_seconds",
			Help:    "Latency of individual lookup sources",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"source"}),
		sourceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "callerid_source_errors_total",
			Help: "Lookup source failures and timeouts",
		}, []string{"source"}),
		cacheResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "callerid_cache_requests_total",
			Help: "Lookup cache hits and misses",
		}, []string{"result"}),
		historyRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "callerid_history_rows_written_total",
			Help: "Lookup history rows upserted",
		}),
		historyFlushes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "callerid_history_flushes_total",
			Help: "Lookup history batch flushes partitioned by outcome",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies. Routes are labelled with
// the matched template to keep cardinality low.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		m.httpRequests.With(labels).Inc()
		m.httpDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}

// ObserveLookup counts a finished lookup by the source its name came from.
func (m *Metrics) ObserveLookup(nameSource string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(nameSource).Inc()
}

// ObserveSource records one source call.
func (m *Metrics) ObserveSource(source string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.sourceDuration.WithLabelValues(source).Observe(took.Seconds())
	if err != nil {
		m.sourceErrors.WithLabelValues(source).Inc()
	}
}

// ObserveCache records a cache hit or miss.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheResults.WithLabelValues(result).Inc()
}

// ObserveHistoryFlush records a history batch write of n rows.
func (m *Metrics) ObserveHistoryFlush(n int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.historyFlushes.WithLabelValues("error").Inc()
		return
	}
	m.historyFlushes.WithLabelValues("ok").Inc()
	m.historyRows.Add(float64(n))
}
