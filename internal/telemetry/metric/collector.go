package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/supsim/internal/infra/buildinfo"
)

// Collector reports values computed at scrape time.
type Collector struct {
	started time.Time

	buildInfo *prometheus.Desc
	uptime    *prometheus.Desc
}

// NewCollector creates a collector that measures uptime from started.
func NewCollector(started time.Time) *Collector {
	return &Collector{
		started: started,
		buildInfo: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "build_info"),
			"Build information; the value is always 1.",
			[]string{"version", "commit"}, nil,
		),
		uptime: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "uptime_seconds"),
			"Seconds since the server started.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.buildInfo
	ch <- c.uptime
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	info := buildinfo.Get()
	ch <- prometheus.MustNewConstMetric(c.buildInfo, prometheus.GaugeValue, 1, info.Version, info.Commit)
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, time.Since(c.started).Seconds())
}
