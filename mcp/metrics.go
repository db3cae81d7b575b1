package mcp

import "github.com/prometheus/client_golang/prometheus"

type serverMetrics struct {
	calls *prometheus.CounterVec
}

func newServerMetrics(registry *prometheus.Registry) *serverMetrics {
	if registry == nil {
		return nil
	}
	m := &serverMetrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketd_tool_calls_total",
				Help: "Total number of tool calls served by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),
	}
	registry.MustRegister(m.calls)
	return m
}

func (m *serverMetrics) observe(tool, outcome string) {
	if m != nil && m.calls != nil {
		m.calls.WithLabelValues(tool, outcome).Inc()
	}
}
