package metrics

import "github.com/prometheus/client_golang/prometheus"

// EntryMetrics tracks the state of each root.
type EntryMetrics struct {
	entries   *prometheus.GaugeVec
	lastClean *prometheus.GaugeVec
}

// NewEntryMetrics creates and registers entry gauges.
func NewEntryMetrics(cfg *Config, registry *prometheus.Registry) *EntryMetrics {
	em := &EntryMetrics{
		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "entries",
				Help:      "Run directories per location as of the last pass or status check",
			},
			[]string{"root", "location"},
		),

		lastClean: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "last_clean_timestamp_seconds",
				Help:      "Unix time of the last successful cleaning pass",
			},
			[]string{"root"},
		),
	}

	registry.MustRegister(em.entries, em.lastClean)

	return em
}
