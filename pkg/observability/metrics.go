// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the cortex engine.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cortex_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cortex_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method"},
	)

	// QueriesTotal counts analysis queries by final outcome.
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cortex_queries_total",
			Help: "Analysis queries",
		},
		[]string{"outcome"},
	)

	// QueryAttempts records how many execution attempts a query consumed.
	QueryAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cortex_query_attempts",
			Help:    "Execution attempts per query",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	// ExecutionsTotal counts sandbox executions by result kind.
	ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cortex_executions_total",
			Help: "Sandbox executions",
		},
		[]string{"result"},
	)

	// ReasonerRequestsTotal counts requests sent to the reasoning backend.
	ReasonerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cortex_reasoner_requests_total",
			Help: "Reasoner requests",
		},
		[]string{"backend", "status"},
	)

	// ReasonerLatency records reasoning backend latency in seconds.
	ReasonerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cortex_reasoner_latency_seconds",
			Help:    "Reasoner latency",
			Buckets: LLMBuckets,
		},
		[]string{"backend"},
	)

	// SessionsActive tracks the number of live sessions.
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cortex_sessions_active",
			Help: "Live sessions",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		QueriesTotal,
		QueryAttempts,
		ExecutionsTotal,
		ReasonerRequestsTotal,
		ReasonerLatency,
		SessionsActive,
	)
}
