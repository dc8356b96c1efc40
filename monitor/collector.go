// Package monitor exposes the report pipeline's accounting to Prometheus
// and to periodic log snapshots.
package monitor

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/accellera-official/uvm-core/catchers"
	"github.com/accellera-official/uvm-core/contracts"
)

// StatsSource provides catcher accounting snapshots. catchers.Stats is the
// standard implementation.
type StatsSource interface {
	Snapshot() catchers.StatsSnapshot
}

// TallySource provides emission counts. reporting.Server is the standard
// implementation.
type TallySource interface {
	SeverityCount(severity contracts.Severity) uint64
	QuitCount() int
}

// TrailSource reports how many chain passes are buffered.
type TrailSource interface {
	Len() int
}

// Collector is a pull-style prometheus.Collector over the pipeline's
// counters. It owns no state; every scrape reads the live sources.
type Collector struct {
	stats StatsSource
	tally TallySource
	trail TrailSource

	caughtDesc  *prometheus.Desc
	demotedDesc *prometheus.Desc
	emittedDesc *prometheus.Desc
	quitDesc    *prometheus.Desc
	trailDesc   *prometheus.Desc
}

// CollectorOption configures the collector.
type CollectorOption func(*Collector)

// WithTrailSource adds the trail depth gauge.
func WithTrailSource(trail TrailSource) CollectorOption {
	return func(c *Collector) {
		c.trail = trail
	}
}

// NewCollector creates a collector over the given sources.
func NewCollector(stats StatsSource, tally TallySource, opts ...CollectorOption) *Collector {
	c := &Collector{
		stats: stats,
		tally: tally,
		caughtDesc: prometheus.NewDesc(
			"uvm_report_caught_total",
			"Reports caught by the catcher chain, by original severity.",
			[]string{"original"}, nil),
		demotedDesc: prometheus.NewDesc(
			"uvm_report_demoted_total",
			"Reports demoted by the catcher chain, by original severity.",
			[]string{"original"}, nil),
		emittedDesc: prometheus.NewDesc(
			"uvm_report_emitted_total",
			"Reports that reached the sinks, by final severity.",
			[]string{"severity"}, nil),
		quitDesc: prometheus.NewDesc(
			"uvm_report_quit_count",
			"COUNT-action reports seen so far.",
			nil, nil),
		trailDesc: prometheus.NewDesc(
			"uvm_report_trail_entries",
			"Chain passes currently buffered in the trail.",
			nil, nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register registers the collector, tolerating duplicate registration.
func (c *Collector) Register(registerer prometheus.Registerer) error {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if err := registerer.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			return err
		}
	}
	return nil
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.caughtDesc
	ch <- c.demotedDesc
	ch <- c.emittedDesc
	ch <- c.quitDesc
	ch <- c.trailDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.caughtDesc, prometheus.CounterValue,
		float64(snap.CaughtFatal), "fatal")
	ch <- prometheus.MustNewConstMetric(c.caughtDesc, prometheus.CounterValue,
		float64(snap.CaughtError), "error")
	ch <- prometheus.MustNewConstMetric(c.caughtDesc, prometheus.CounterValue,
		float64(snap.CaughtWarning), "warning")

	ch <- prometheus.MustNewConstMetric(c.demotedDesc, prometheus.CounterValue,
		float64(snap.DemotedFatal), "fatal")
	ch <- prometheus.MustNewConstMetric(c.demotedDesc, prometheus.CounterValue,
		float64(snap.DemotedError), "error")
	ch <- prometheus.MustNewConstMetric(c.demotedDesc, prometheus.CounterValue,
		float64(snap.DemotedWarning), "warning")

	for _, sev := range contracts.Severities() {
		ch <- prometheus.MustNewConstMetric(c.emittedDesc, prometheus.CounterValue,
			float64(c.tally.SeverityCount(sev)), strings.ToLower(sev.String()))
	}

	ch <- prometheus.MustNewConstMetric(c.quitDesc, prometheus.GaugeValue,
		float64(c.tally.QuitCount()))

	if c.trail != nil {
		ch <- prometheus.MustNewConstMetric(c.trailDesc, prometheus.GaugeValue,
			float64(c.trail.Len()))
	}
}

var _ prometheus.Collector = (*Collector)(nil)
