package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type uptimeCollector struct {
	core  string
	since time.Time

	uptimeDesc *prometheus.Desc
}

// NewUptimeCollector reports the seconds since the given start time.
func NewUptimeCollector(core string, since time.Time) prometheus.Collector {
	return &uptimeCollector{
		core:  core,
		since: since,
		uptimeDesc: prometheus.NewDesc(
			"uptime_seconds",
			"Number of seconds the core is up",
			[]string{"core"}, nil),
	}
}

func (c *uptimeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.uptimeDesc
}

func (c *uptimeCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.uptimeDesc, prometheus.CounterValue, time.Since(c.since).Seconds(), c.core)
}
