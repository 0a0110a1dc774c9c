// Package metrics records analysis run statistics in Prometheus form.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for one process. Each instance owns its
// registry, so tests and repeated runs never collide.
type Metrics struct {
	registry *prometheus.Registry

	LinesRead         *prometheus.CounterVec
	Events            *prometheus.CounterVec
	ParseErrors       *prometheus.CounterVec
	Files             *prometheus.CounterVec
	TransitionLatency *prometheus.HistogramVec
	Dangling          *prometheus.GaugeVec
}

// New creates a Metrics instance with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		LinesRead: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "translog_lines_read_total",
			Help: "Total number of log lines read, labelled by report.",
		}, []string{"report"}),

		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "translog_events_total",
			Help: "Total number of events parsed, labelled by report and kind.",
		}, []string{"report", "kind"}),

		ParseErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "translog_parse_errors_total",
			Help: "Total number of lines skipped by the parser, labelled by report and error kind.",
		}, []string{"report", "kind"}),

		Files: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "translog_files_total",
			Help: "Total number of log files handled, labelled by report and status.",
		}, []string{"report", "status"}),

		TransitionLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "translog_transition_duration_ms",
			Help:    "Duration of matched or self-reported transitions in milliseconds.",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 6000, 15000, 60000, 300000},
		}, []string{"report"}),

		Dangling: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "translog_dangling_starts",
			Help: "Transitions started but never completed in the last run.",
		}, []string{"report"}),
	}
}

// Registry exposes the underlying registry as a gatherer.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
