package prometheus

import (
	"github.com/klever-desktop/core/setup"

	"github.com/prometheus/client_golang/prometheus"
)

type setupCollector struct {
	core         string
	orchestrator setup.Orchestrator

	progressDesc *prometheus.Desc
	stateDesc    *prometheus.Desc
}

// NewSetupCollector collects the progress and state of the setup
// orchestrator.
func NewSetupCollector(core string, orchestrator setup.Orchestrator) prometheus.Collector {
	return &setupCollector{
		core:         core,
		orchestrator: orchestrator,
		progressDesc: prometheus.NewDesc(
			"setup_progress_percent",
			"Progress of the environment setup",
			[]string{"core"}, nil),
		stateDesc: prometheus.NewDesc(
			"setup_state",
			"State of the environment setup, 1 for the current state",
			[]string{"core", "state"}, nil),
	}
}

func (c *setupCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.progressDesc
	ch <- c.stateDesc
}

func (c *setupCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.progressDesc, prometheus.GaugeValue, float64(c.orchestrator.Progress()), c.core)

	current := c.orchestrator.State()

	for _, state := range []setup.State{
		setup.StateIdle,
		setup.StateRunning,
		setup.StateSucceeded,
		setup.StateAborted,
		setup.StateCompletedWithWarnings,
	} {
		value := 0.0
		if state == current {
			value = 1.0
		}

		ch <- prometheus.MustNewConstMetric(c.stateDesc, prometheus.GaugeValue, value, c.core, state.String())
	}
}
