// Package metrics exposes scanner progress as Prometheus metrics. The
// collector reads the engine's atomic counters on scrape, so the scanner
// core stays free of any metrics dependency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lrem/reorg/internal/scanner"
)

// Collector turns engine snapshots into Prometheus metrics.
type Collector struct {
	engine *scanner.Engine

	dirsScanned *prometheus.Desc
	dirsResumed *prometheus.Desc
	filesHashed *prometheus.Desc
	bytesHashed *prometheus.Desc
	symlinks    *prometheus.Desc
	failures    *prometheus.Desc
	writes      *prometheus.Desc
	queueLen    *prometheus.Desc
	sinkLen     *prometheus.Desc
}

// Ensure Collector implements prometheus.Collector
var _ prometheus.Collector = (*Collector)(nil)

// NewCollector builds a collector over the engine.
func NewCollector(engine *scanner.Engine) *Collector {
	return &Collector{
		engine:      engine,
		dirsScanned: prometheus.NewDesc("reorg_directories_scanned_total", "Directories fully scanned this run.", nil, nil),
		dirsResumed: prometheus.NewDesc("reorg_directories_resumed_total", "Directories skipped via the resume index.", nil, nil),
		filesHashed: prometheus.NewDesc("reorg_files_hashed_total", "Files fingerprinted this run.", nil, nil),
		bytesHashed: prometheus.NewDesc("reorg_bytes_hashed_total", "Bytes fingerprinted this run.", nil, nil),
		symlinks:    prometheus.NewDesc("reorg_symlinks_recorded_total", "Symlinks recorded this run.", nil, nil),
		failures:    prometheus.NewDesc("reorg_directory_failures_total", "Directories that failed to scan.", nil, nil),
		writes:      prometheus.NewDesc("reorg_store_writes_total", "Operations applied by the writer.", nil, nil),
		queueLen:    prometheus.NewDesc("reorg_work_queue_length", "Directories waiting in the work queue.", nil, nil),
		sinkLen:     prometheus.NewDesc("reorg_sink_queue_length", "Operations waiting for the writer.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.dirsScanned
	ch <- c.dirsResumed
	ch <- c.filesHashed
	ch <- c.bytesHashed
	ch <- c.symlinks
	ch <- c.failures
	ch <- c.writes
	ch <- c.queueLen
	ch <- c.sinkLen
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.engine.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.dirsScanned, prometheus.CounterValue, float64(snap.DirsScanned))
	ch <- prometheus.MustNewConstMetric(c.dirsResumed, prometheus.CounterValue, float64(snap.DirsResumed))
	ch <- prometheus.MustNewConstMetric(c.filesHashed, prometheus.CounterValue, float64(snap.FilesHashed))
	ch <- prometheus.MustNewConstMetric(c.bytesHashed, prometheus.CounterValue, float64(snap.BytesHashed))
	ch <- prometheus.MustNewConstMetric(c.symlinks, prometheus.CounterValue, float64(snap.Symlinks))
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(snap.Failures))
	ch <- prometheus.MustNewConstMetric(c.writes, prometheus.CounterValue, float64(snap.Writes))
	ch <- prometheus.MustNewConstMetric(c.queueLen, prometheus.GaugeValue, float64(snap.QueueLen))
	ch <- prometheus.MustNewConstMetric(c.sinkLen, prometheus.GaugeValue, float64(snap.SinkLen))
}

// Serve registers the collector on a fresh registry and serves /metrics on
// addr in a background goroutine. Listen errors are reported through errcb.
func Serve(addr string, engine *scanner.Engine, errcb func(error)) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(engine))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && errcb != nil {
			errcb(err)
		}
	}()
}
