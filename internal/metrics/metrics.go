// Package metrics collects Prometheus metrics for colourscan runs and
// exports them in the node_exporter textfile format.
package metrics

import (
	"github.com/colourscan/colourscan/internal/types"
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes used as the "outcome" label of RunsTotal.
const (
	OutcomeEmitted        = "emitted"
	OutcomeBelowThreshold = "below_threshold"
	OutcomeInvalidText    = "invalid_text"
	OutcomeUnterminated   = "unterminated"
)

// Collector holds all colourscan metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	FilesScanned  prometheus.Counter
	CacheHits     prometheus.Counter
	BytesScanned  prometheus.Counter
	MarkersSeen   prometheus.Counter
	RunsTotal     *prometheus.CounterVec
	ScanDuration  prometheus.Gauge
	LastThreshold prometheus.Gauge
	BuildInfo     *prometheus.GaugeVec
}

// New creates and registers all colourscan metrics.
func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,

		FilesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "colourscan_files_scanned_total",
			Help: "Total number of save files scanned.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "colourscan_cache_hits_total",
			Help: "Save files whose results were served from the cache.",
		}),
		BytesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "colourscan_bytes_scanned_total",
			Help: "Decompressed bytes fed to the escape scanner.",
		}),
		MarkersSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "colourscan_escape_markers_total",
			Help: "ESC bytes seen by the escape scanner.",
		}),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colourscan_runs_total",
				Help: "Escaped text runs by outcome.",
			},
			[]string{"outcome"},
		),
		ScanDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "colourscan_scan_duration_seconds",
			Help: "Wall time of the last scan.",
		}),
		LastThreshold: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "colourscan_threshold",
			Help: "Escape threshold used by the last scan.",
		}),
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "colourscan_info",
				Help: "Build information about colourscan.",
			},
			[]string{"version"},
		),
	}

	reg.MustRegister(
		c.FilesScanned,
		c.CacheHits,
		c.BytesScanned,
		c.MarkersSeen,
		c.RunsTotal,
		c.ScanDuration,
		c.LastThreshold,
		c.BuildInfo,
	)
	return c
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// SetBuildInfo sets the constant build info gauge.
func (c *Collector) SetBuildInfo(version string) {
	c.BuildInfo.WithLabelValues(version).Set(1)
}

// ObserveFile records the outcome of scanning one file.
func (c *Collector) ObserveFile(r types.FileResult) {
	c.FilesScanned.Inc()
	if r.Cached {
		c.CacheHits.Inc()
	}
	c.BytesScanned.Add(float64(r.Stats.Bytes))
	c.MarkersSeen.Add(float64(r.Stats.Markers))
	c.RunsTotal.WithLabelValues(OutcomeEmitted).Add(float64(r.Stats.Emitted))
	c.RunsTotal.WithLabelValues(OutcomeBelowThreshold).Add(float64(r.Stats.BelowThreshold))
	c.RunsTotal.WithLabelValues(OutcomeInvalidText).Add(float64(r.Stats.InvalidText))
	if r.Stats.Unterminated {
		c.RunsTotal.WithLabelValues(OutcomeUnterminated).Inc()
	}
}

// SetScan records scan-wide values.
func (c *Collector) SetScan(seconds float64, threshold int) {
	c.ScanDuration.Set(seconds)
	c.LastThreshold.Set(float64(threshold))
}

// WriteTextfile atomically writes all metrics to path in the text format
// read by node_exporter's textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
