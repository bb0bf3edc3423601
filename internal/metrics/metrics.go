// Package metrics exposes Prometheus counters for auth operations and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the service layer and HTTP middleware depend on.
type Recorder interface {
	RecordAuth(operation, outcome string)
	RecordHTTP(method, route string, status int, d time.Duration)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	authOps      *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	gatherer     prometheus.Gatherer
}

// NewCollector registers the metrics on reg. reg should also be a Gatherer
// (a *prometheus.Registry) for Handler to serve them.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_auth_operations_total",
			Help: "Auth operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(c.authOps, c.httpDuration)
	if g, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = g
	}
	return c
}

func (c *Collector) RecordAuth(operation, outcome string) {
	c.authOps.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) RecordHTTP(method, route string, status int, d time.Duration) {
	c.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordAuth(string, string)                     {}
func (Nop) RecordHTTP(string, string, int, time.Duration) {}
