// Package metrics wraps the Prometheus collectors the client exposes:
// REST calls, cache lookups, breaker transitions, socket reconnects and
// notifications. A nil *Collector is valid and records nothing, so
// components accept one optionally.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultNamespace = "lingua"

// Outcome labels for API requests.
const (
	OutcomeOK          = "ok"
	OutcomeClientError = "client_error"
	OutcomeServerError = "server_error"
	OutcomeTimeout     = "timeout"
	OutcomeNetwork     = "network"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheStale = "stale"
)

type Collector struct {
	registry *prometheus.Registry

	apiRequests       *prometheus.CounterVec
	apiLatency        *prometheus.HistogramVec
	cacheLookups      *prometheus.CounterVec
	breakerState      *prometheus.GaugeVec
	breakerTransition *prometheus.CounterVec
	socketReconnects  prometheus.Counter
	notifications     *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "REST requests by method, path template and outcome",
		},
		[]string{"method", "path", "outcome"},
	)

	c.apiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "REST request latency",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"method", "path"},
	)

	c.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by result (hit, miss, stale)",
		},
		[]string{"result"},
	)

	c.breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "breaker",
			Name:      "state",
			Help:      "Current breaker state (0=closed, 1=open, 2=half_open)",
		},
		[]string{"name"},
	)

	c.breakerTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "breaker",
			Name:      "transitions_total",
			Help:      "Breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	c.socketReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "socket",
			Name:      "reconnects_total",
			Help:      "Realtime socket reconnect attempts",
		},
	)

	c.notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Achievement notifications by notifier and result",
		},
		[]string{"notifier", "result"},
	)

	c.registry.MustRegister(
		c.apiRequests,
		c.apiLatency,
		c.cacheLookups,
		c.breakerState,
		c.breakerTransition,
		c.socketReconnects,
		c.notifications,
	)

	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordAPIRequest(method, path, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.apiRequests.WithLabelValues(method, path, outcome).Inc()
	c.apiLatency.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (c *Collector) RecordCacheLookup(result string) {
	if c == nil {
		return
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

func (c *Collector) RecordBreakerTransition(name, from, to string, toValue int) {
	if c == nil {
		return
	}
	c.breakerTransition.WithLabelValues(name, from, to).Inc()
	c.breakerState.WithLabelValues(name).Set(float64(toValue))
}

func (c *Collector) RecordSocketReconnect() {
	if c == nil {
		return
	}
	c.socketReconnects.Inc()
}

func (c *Collector) RecordNotification(notifier string, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.notifications.WithLabelValues(notifier, result).Inc()
}
