package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	operations *prometheus.HistogramVec
	sends      prometheus.Counter
	deliveries *prometheus.CounterVec
	changes    *prometheus.CounterVec
}

func newMetrics(registry prometheus.Registerer) *metrics {
	factory := promauto.With(registry)
	return &metrics{
		operations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gluebench",
			Name:      "operation_duration_seconds",
			Help:      "Duration of one measured operation",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
		}, []string{"benchmark"}),
		sends: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gluebench",
			Name:      "signal_sends_total",
			Help:      "Values sent through the throughput signal",
		}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gluebench",
			Name:      "deliveries_total",
			Help:      "Values received by sinks",
		}, []string{"sink"}),
		changes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gluebench",
			Name:      "changes_total",
			Help:      "Changes emitted by observable nodes",
		}, []string{"node"}),
	}
}

func printMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gathering: %w", err)
	}

	tbl := table.NewWriter()
	tbl.SetTitle("Metrics")
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"metric", "labels", "value"})
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			var value string
			switch {
			case m.GetCounter() != nil:
				value = fmt.Sprint(m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				value = fmt.Sprintf("count=%d sum=%gs", h.GetSampleCount(), h.GetSampleSum())
			}
			tbl.AppendRow(table.Row{mf.GetName(), strings.Join(labels, ","), value})
		}
	}
	tbl.Render()
	return nil
}
