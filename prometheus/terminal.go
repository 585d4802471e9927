package prometheus

import (
	"github.com/klever-desktop/core/terminal"

	"github.com/prometheus/client_golang/prometheus"
)

type terminalCollector struct {
	core string
	term terminal.Terminal

	linesDesc         *prometheus.Desc
	linesByLevelDesc  *prometheus.Desc
	evictedDesc       *prometheus.Desc
	bufferSizeDesc    *prometheus.Desc
	processesDesc     *prometheus.Desc
	notificationsDesc *prometheus.Desc
}

// NewTerminalCollector collects line and process stats from the terminal.
func NewTerminalCollector(core string, term terminal.Terminal) prometheus.Collector {
	return &terminalCollector{
		core: core,
		term: term,
		linesDesc: prometheus.NewDesc(
			"terminal_lines_total",
			"Number of ingested lines",
			[]string{"core"}, nil),
		linesByLevelDesc: prometheus.NewDesc(
			"terminal_lines_level_total",
			"Number of ingested lines per severity",
			[]string{"core", "level"}, nil),
		evictedDesc: prometheus.NewDesc(
			"terminal_lines_evicted_total",
			"Number of lines dropped from the buffer",
			[]string{"core"}, nil),
		bufferSizeDesc: prometheus.NewDesc(
			"terminal_buffer_lines",
			"Number of lines currently buffered",
			[]string{"core"}, nil),
		processesDesc: prometheus.NewDesc(
			"terminal_processes",
			"Tracked operations per status",
			[]string{"core", "status"}, nil),
		notificationsDesc: prometheus.NewDesc(
			"terminal_notifications",
			"Unacknowledged notifications per kind",
			[]string{"core", "kind"}, nil),
	}
}

func (c *terminalCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.linesDesc
	ch <- c.linesByLevelDesc
	ch <- c.evictedDesc
	ch <- c.bufferSizeDesc
	ch <- c.processesDesc
	ch <- c.notificationsDesc
}

func (c *terminalCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.term.Stats()

	ch <- prometheus.MustNewConstMetric(c.linesDesc, prometheus.CounterValue, float64(stats.Lines), c.core)
	ch <- prometheus.MustNewConstMetric(c.linesByLevelDesc, prometheus.CounterValue, float64(stats.Errors), c.core, "error")
	ch <- prometheus.MustNewConstMetric(c.linesByLevelDesc, prometheus.CounterValue, float64(stats.Warnings), c.core, "warning")
	ch <- prometheus.MustNewConstMetric(c.evictedDesc, prometheus.CounterValue, float64(stats.Evicted), c.core)
	ch <- prometheus.MustNewConstMetric(c.bufferSizeDesc, prometheus.GaugeValue, float64(stats.BufferSize), c.core)

	statuses := map[terminal.Status]float64{
		terminal.StatusRunning:   0,
		terminal.StatusCompleted: 0,
		terminal.StatusFailed:    0,
		terminal.StatusCancelled: 0,
	}

	for _, p := range c.term.Processes() {
		if _, ok := statuses[p.Status]; !ok {
			continue
		}

		statuses[p.Status]++
	}

	for status, value := range statuses {
		ch <- prometheus.MustNewConstMetric(c.processesDesc, prometheus.GaugeValue, value, c.core, status.String())
	}

	notifications := c.term.Notifications()

	ch <- prometheus.MustNewConstMetric(c.notificationsDesc, prometheus.GaugeValue, float64(notifications.Errors), c.core, "error")
	ch <- prometheus.MustNewConstMetric(c.notificationsDesc, prometheus.GaugeValue, float64(notifications.Warnings), c.core, "warning")
	ch <- prometheus.MustNewConstMetric(c.notificationsDesc, prometheus.GaugeValue, float64(notifications.Running), c.core, "running")
}
