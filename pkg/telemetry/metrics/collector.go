package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metric name prefix.
	// Default: "rundir"
	Namespace string

	// DurationBuckets are the histogram buckets for pass duration (seconds).
	// Default: [0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120]
	DurationBuckets []float64

	// RuntimeCollectors registers the Go runtime and process collectors.
	RuntimeCollectors bool
}

// Collector records run directory metrics.
type Collector struct {
	registry   *prometheus.Registry
	operations *OperationMetrics
	entries    *EntryMetrics
}

// NewCollector creates a collector and registers its metrics with registry.
// If registry is nil a new one is created.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &Config{}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "rundir"
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120}
	}

	if cfg.RuntimeCollectors {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return &Collector{
		registry:   registry,
		operations: NewOperationMetrics(cfg, registry),
		entries:    NewEntryMetrics(cfg, registry),
	}
}

// Registry returns the registry the collector's metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordCreate counts a create operation.
func (c *Collector) RecordCreate(root string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.operations.createTotal.WithLabelValues(root, status).Inc()
}

// RecordClean records a finished cleaning pass.
func (c *Collector) RecordClean(root, outcome string, deleted, moved, malformed int, duration time.Duration) {
	c.operations.cleanTotal.WithLabelValues(root, outcome).Inc()
	c.operations.cleanDuration.WithLabelValues(root).Observe(duration.Seconds())

	if outcome == "dry_run" {
		return
	}
	c.operations.deletedTotal.WithLabelValues(root).Add(float64(deleted))
	c.operations.movedTotal.WithLabelValues(root).Add(float64(moved))
	c.operations.malformedTotal.WithLabelValues(root).Add(float64(malformed))
	if outcome == "ok" {
		c.entries.lastClean.WithLabelValues(root).SetToCurrentTime()
	}
}

// RecordProtectedFile counts a pass blocked by a protected file type.
func (c *Collector) RecordProtectedFile(root, extension string) {
	c.operations.protectedTotal.WithLabelValues(root, extension).Inc()
}

// UpdateEntries sets the entry gauges for root.
func (c *Collector) UpdateEntries(root string, active, archive int) {
	c.entries.entries.WithLabelValues(root, "active").Set(float64(active))
	c.entries.entries.WithLabelValues(root, "archive").Set(float64(archive))
}

// RecordJournalPrune counts journal records removed by retention.
func (c *Collector) RecordJournalPrune(removed int64) {
	c.operations.journalPruned.Add(float64(removed))
}
