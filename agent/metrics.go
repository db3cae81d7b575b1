package agent

import "github.com/prometheus/client_golang/prometheus"

// Turn outcomes.
const (
	outcomeAnswered            = "answered"
	outcomeRegistryUnavailable = "registry_unavailable"
	outcomeModelUnavailable    = "model_unavailable"
	outcomeCanceled            = "canceled"
)

// Tool invocation outcomes.
const (
	toolOK          = "ok"
	toolReportedErr = "tool_error"
	toolLocalErr    = "local_error"
	toolUnknown     = "unknown_tool"
)

type metricsProvider struct {
	turns      *prometheus.CounterVec
	modelCalls *prometheus.CounterVec
	toolCalls  *prometheus.CounterVec
}

func newMetricsProvider(registry *prometheus.Registry) *metricsProvider {
	if registry == nil {
		return nil
	}

	p := &metricsProvider{
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketchat_turns_total",
				Help: "Total number of chat turns by outcome",
			},
			[]string{"outcome"},
		),
		modelCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketchat_model_requests_total",
				Help: "Total number of completion requests by loop phase",
			},
			[]string{"phase"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketchat_tool_invocations_total",
				Help: "Total number of tool invocations by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),
	}

	registry.MustRegister(p.turns, p.modelCalls, p.toolCalls)
	return p
}

func (p *metricsProvider) turn(outcome string) {
	if p != nil && p.turns != nil {
		p.turns.WithLabelValues(outcome).Inc()
	}
}

func (p *metricsProvider) modelCall(phase string) {
	if p != nil && p.modelCalls != nil {
		p.modelCalls.WithLabelValues(phase).Inc()
	}
}

func (p *metricsProvider) toolCall(tool, outcome string) {
	if p != nil && p.toolCalls != nil {
		p.toolCalls.WithLabelValues(tool, outcome).Inc()
	}
}
