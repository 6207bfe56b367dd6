// Package capmetrics exposes the counters of a capture.Manager as Prometheus metrics.
//
// The collector reads the atomic counters of the manager and its logs at scrape time, so
// registering it adds nothing to the recording path:
//
//	registry := prometheus.NewRegistry()
//	registry.MustRegister(capmetrics.NewCollector(manager))
package capmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/caplog/capture"
)

const namespace = "caplog"

var (
	rowsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "rows_recorded_total"),
		"Rows handed to the capture file writer.",
		[]string{"log"}, nil,
	)
	bytesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "bytes_written_total"),
		"Encoded row bytes handed to the capture file writer, headers excluded.",
		[]string{"log"}, nil,
	)
	filesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "files_opened_total"),
		"Capture files opened.",
		[]string{"log"}, nil,
	)
	rotationsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "rotations_total"),
		"Capture directory rotations performed by the manager.",
		nil, nil,
	)
	loggingDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "logging"),
		"Whether the manager is logging (1) or stopped (0).",
		nil, nil,
	)
)

// Collector implements prometheus.Collector over a capture.Manager.
type Collector struct {
	manager *capture.Manager
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for m. Logs added to m later are picked up on the
// next scrape.
func NewCollector(m *capture.Manager) *Collector {
	return &Collector{manager: m}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- rowsDesc
	ch <- bytesDesc
	ch <- filesDesc
	ch <- rotationsDesc
	ch <- loggingDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, l := range c.manager.Logs() {
		stats := l.Stats()
		ch <- prometheus.MustNewConstMetric(rowsDesc, prometheus.CounterValue, float64(stats.Rows), l.Name())
		ch <- prometheus.MustNewConstMetric(bytesDesc, prometheus.CounterValue, float64(stats.Bytes), l.Name())
		ch <- prometheus.MustNewConstMetric(filesDesc, prometheus.CounterValue, float64(stats.Files), l.Name())
	}

	ch <- prometheus.MustNewConstMetric(rotationsDesc, prometheus.CounterValue, float64(c.manager.Rotations()))

	logging := 0.0
	if c.manager.IsLogging() {
		logging = 1
	}
	ch <- prometheus.MustNewConstMetric(loggingDesc, prometheus.GaugeValue, logging)
}
