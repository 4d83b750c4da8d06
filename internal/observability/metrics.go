package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects orchestration metrics via Prometheus.
//
// Tracked series:
//   - routing decisions by processing path
//   - model backend latency and outcome by provider/model
//   - tool executions by name and status
//   - escalations by outcome (resolved, timeout, failures)
//   - currently busy sessions
type Metrics struct {
	// RouteDecisions counts routing decisions.
	// Labels: path (deterministic|template_fill|embedding_search|micro_model|full_model)
	RouteDecisions *prometheus.CounterVec

	// ProviderRequests counts model backend calls.
	// Labels: provider, model, status (success|error)
	ProviderRequests *prometheus.CounterVec

	// ProviderLatency measures model backend latency in seconds.
	// Labels: provider, model
	ProviderLatency *prometheus.HistogramVec

	// ToolExecutions counts tool invocations.
	// Labels: tool, status (success|error|rejected)
	ToolExecutions *prometheus.CounterVec

	// ToolLatency measures tool execution time in seconds.
	// Labels: tool
	ToolLatency *prometheus.HistogramVec

	// Escalations counts escalation attempts by outcome.
	// Labels: outcome (resolved|timeout|cancelled|enqueue_failed|store_failed|remote_failed)
	Escalations *prometheus.CounterVec

	// BusySessions gauges sessions with an in-flight request.
	BusySessions prometheus.Gauge

	// RecursionDepthReached counts turns that hit the follow-up depth cap.
	RecursionDepthReached prometheus.Counter
}

// NewMetrics creates and registers metrics on the given registerer.
// A nil registerer falls back to the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RouteDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steward",
			Name:      "route_decisions_total",
			Help:      "Routing decisions by processing path.",
		}, []string{"path"}),

		ProviderRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steward",
			Name:      "provider_requests_total",
			Help:      "Model backend requests by provider, model and status.",
		}, []string{"provider", "model", "status"}),

		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "steward",
			Name:      "provider_latency_seconds",
			Help:      "Model backend request latency.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"provider", "model"}),

		ToolExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steward",
			Name:      "tool_executions_total",
			Help:      "Tool invocations by name and status.",
		}, []string{"tool", "status"}),

		ToolLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "steward",
			Name:      "tool_latency_seconds",
			Help:      "Tool execution time.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"tool"}),

		Escalations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steward",
			Name:      "escalations_total",
			Help:      "Escalation attempts by outcome.",
		}, []string{"outcome"}),

		BusySessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "steward",
			Name:      "busy_sessions",
			Help:      "Sessions with an in-flight top-level request.",
		}),

		RecursionDepthReached: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "steward",
			Name:      "recursion_depth_reached_total",
			Help:      "Turns stopped by the follow-up depth cap.",
		}),
	}
}
