package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hwameistor/array-csi/pkg/array/agent"
)

var _ prometheus.Collector = &AgentCollector{}

var (
	agentPoolDesc = prometheus.NewDesc(
		"array_csi_agent_pool_mediators",
		"The mediators of a cached storage agent's pool by state.",
		[]string{"arrayType", "endpoints", "state"}, nil,
	)
	agentCountDesc = prometheus.NewDesc(
		"array_csi_agents",
		"The number of cached storage agents.",
		nil, nil,
	)
)

// AgentStatsSource lists the cached agents
type AgentStatsSource interface {
	Stats() []agent.AgentStats
}

// AgentCollector reports the agent registry at scrape time
type AgentCollector struct {
	source AgentStatsSource
}

// NewAgentCollector creates a collector over the registry
func NewAgentCollector(source AgentStatsSource) *AgentCollector {
	return &AgentCollector{source: source}
}

func (ac *AgentCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- agentCountDesc
	ch <- agentPoolDesc
}

func (ac *AgentCollector) Collect(ch chan<- prometheus.Metric) {
	stats := ac.source.Stats()
	ch <- prometheus.MustNewConstMetric(agentCountDesc, prometheus.GaugeValue, float64(len(stats)))
	for _, s := range stats {
		ch <- prometheus.MustNewConstMetric(agentPoolDesc, prometheus.GaugeValue, float64(s.IdleSize), s.ArrayType, s.Endpoints, "idle")
		ch <- prometheus.MustNewConstMetric(agentPoolDesc, prometheus.GaugeValue, float64(s.CurrentSize-s.IdleSize), s.ArrayType, s.Endpoints, "busy")
		ch <- prometheus.MustNewConstMetric(agentPoolDesc, prometheus.GaugeValue, float64(s.MaxSize), s.ArrayType, s.Endpoints, "max")
	}
}
