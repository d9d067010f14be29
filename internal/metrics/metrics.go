// Package metrics exposes Prometheus metrics of the API, the core-banking
// gateway, the job workers and the coach.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "banking_coach"

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector owns a private registry with every metric of the service.
type Collector struct {
	registry      *prometheus.Registry
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	coreCalls     *prometheus.CounterVec
	coreDuration  *prometheus.HistogramVec
	jobsProcessed *prometheus.CounterVec
	coachAdvice   *prometheus.CounterVec
}

// NewCollector creates a collector with Go and process metrics registered.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		coreCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "core_calls_total",
			Help:      "Core-banking transactions by code and outcome",
		}, []string{"trx", "outcome"}),
		coreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "core_call_duration_seconds",
			Help:      "Core-banking transaction latency",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"trx"}),
		jobsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Background jobs by type and final outcome",
		}, []string{"type", "outcome"}),
		coachAdvice: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coach_advice_total",
			Help:      "Coach answers, split by whether a fallback was used",
		}, []string{"degraded"}),
	}
}

// RecordCoreCall records one core-banking transaction.
func (c *Collector) RecordCoreCall(trx string, err error, duration time.Duration) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	c.coreCalls.WithLabelValues(trx, outcome).Inc()
	c.coreDuration.WithLabelValues(trx).Observe(duration.Seconds())
}

// RecordHTTPRequest records one served request. route is the matched mux
// pattern, not the raw path, to keep cardinality bounded.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordJob records a processed job attempt.
func (c *Collector) RecordJob(jobType string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	c.jobsProcessed.WithLabelValues(jobType, outcome).Inc()
}

// RecordAdvice records a coach answer.
func (c *Collector) RecordAdvice(degraded bool) {
	c.coachAdvice.WithLabelValues(strconv.FormatBool(degraded)).Inc()
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
