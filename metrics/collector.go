package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports Value as prometheus metrics. Values are read on every scrape,
// nothing is cached between scrapes.
type Collector struct {
	v *Value

	processed   *prometheus.Desc
	panics      *prometheus.Desc
	procSeconds *prometheus.Desc
	waitSeconds *prometheus.Desc
	submitted   *prometheus.Desc
	rejected    *prometheus.Desc
	dropped     *prometheus.Desc
	alive       *prometheus.Desc
}

// NewCollector makes a prometheus collector for v. Register it with prometheus.Registerer.
func NewCollector(namespace string, v *Value) *Collector {
	name := func(n string) string { return prometheus.BuildFQName(namespace, "", n) }
	wl := []string{"worker"}
	return &Collector{
		v:           v,
		processed:   prometheus.NewDesc(name("jobs_processed_total"), "Jobs completed by a worker.", wl, nil),
		panics:      prometheus.NewDesc(name("jobs_panics_total"), "Jobs that panicked on a worker.", wl, nil),
		procSeconds: prometheus.NewDesc(name("processing_seconds_total"), "Time a worker spent running jobs.", wl, nil),
		waitSeconds: prometheus.NewDesc(name("wait_seconds_total"), "Time a worker spent waiting for jobs.", wl, nil),
		submitted:   prometheus.NewDesc(name("jobs_submitted_total"), "Jobs accepted by the pool.", nil, nil),
		rejected:    prometheus.NewDesc(name("jobs_rejected_total"), "Jobs rejected by the pool.", nil, nil),
		dropped:     prometheus.NewDesc(name("jobs_dropped_total"), "Queued jobs dropped on shutdown.", nil, nil),
		alive:       prometheus.NewDesc(name("workers_alive"), "Workers able to run jobs.", nil, nil),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.processed
	ch <- c.panics
	ch <- c.procSeconds
	ch <- c.waitSeconds
	ch <- c.submitted
	ch <- c.rejected
	ch <- c.dropped
	ch <- c.alive
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for id := range c.v.Workers() {
		ws := c.v.Worker(id)
		wid := strconv.Itoa(id)
		ch <- prometheus.MustNewConstMetric(c.processed, prometheus.CounterValue, float64(ws.Processed), wid)
		ch <- prometheus.MustNewConstMetric(c.panics, prometheus.CounterValue, float64(ws.Panics), wid)
		ch <- prometheus.MustNewConstMetric(c.procSeconds, prometheus.CounterValue, ws.ProcessingTime.Seconds(), wid)
		ch <- prometheus.MustNewConstMetric(c.waitSeconds, prometheus.CounterValue, ws.WaitTime.Seconds(), wid)
	}
	stats := c.v.GetStats()
	ch <- prometheus.MustNewConstMetric(c.submitted, prometheus.CounterValue, float64(stats.Submitted))
	ch <- prometheus.MustNewConstMetric(c.rejected, prometheus.CounterValue, float64(stats.Rejected))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(stats.Dropped))
	ch <- prometheus.MustNewConstMetric(c.alive, prometheus.GaugeValue, float64(stats.Alive))
}
