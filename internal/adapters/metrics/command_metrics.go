package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CommandMetricsCollector counts command dispatches and failures. Every
// command increments commands_total on entry; failures also increment
// command_failures_total with the taxonomy reason label.
type CommandMetricsCollector struct {
	commandsTotal *prometheus.CounterVec
	failuresTotal *prometheus.CounterVec
}

// NewCommandMetricsCollector creates the command counters.
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_total",
				Help:      "Total commands dispatched by command name",
			},
			[]string{"command"},
		),
		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_failures_total",
				Help:      "Total failed commands by command name and failure reason",
			},
			[]string{"command", "reason"},
		),
	}
}

// Register registers the command counters with the Prometheus registry.
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}
	for _, metric := range []prometheus.Collector{c.commandsTotal, c.failuresTotal} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommand counts a command dispatch.
func (c *CommandMetricsCollector) RecordCommand(command string) {
	c.commandsTotal.WithLabelValues(command).Inc()
}

// RecordCommandFailure counts a failed command with its reason.
func (c *CommandMetricsCollector) RecordCommandFailure(command, reason string) {
	c.failuresTotal.WithLabelValues(command, reason).Inc()
}
