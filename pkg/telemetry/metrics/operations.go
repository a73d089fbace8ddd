package metrics

import "github.com/prometheus/client_golang/prometheus"

// OperationMetrics tracks create and clean operations.
type OperationMetrics struct {
	createTotal    *prometheus.CounterVec
	cleanTotal     *prometheus.CounterVec
	cleanDuration  *prometheus.HistogramVec
	deletedTotal   *prometheus.CounterVec
	movedTotal     *prometheus.CounterVec
	malformedTotal *prometheus.CounterVec
	protectedTotal *prometheus.CounterVec
	journalPruned  prometheus.Counter
}

// NewOperationMetrics creates and registers operation metrics.
func NewOperationMetrics(cfg *Config, registry *prometheus.Registry) *OperationMetrics {
	om := &OperationMetrics{
		createTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "create_total",
				Help:      "Total number of run directory creations",
			},
			[]string{"root", "status"},
		),

		cleanTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "clean_total",
				Help:      "Total number of cleaning passes by outcome",
			},
			[]string{"root", "outcome"},
		),

		cleanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "clean_duration_seconds",
				Help:      "Duration of cleaning passes in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"root"},
		),

		deletedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "deleted_total",
				Help:      "Total number of archived runs deleted",
			},
			[]string{"root"},
		),

		movedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "moved_total",
				Help:      "Total number of active runs moved to the archive",
			},
			[]string{"root"},
		),

		malformedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "malformed_total",
				Help:      "Total number of entries skipped because their name could not be decoded",
			},
			[]string{"root"},
		),

		protectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "protected_files_total",
				Help:      "Total number of cleaning passes blocked by a protected file type",
			},
			[]string{"root", "extension"},
		),

		journalPruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "journal_pruned_total",
				Help:      "Total number of journal records removed by retention",
			},
		),
	}

	registry.MustRegister(
		om.createTotal,
		om.cleanTotal,
		om.cleanDuration,
		om.deletedTotal,
		om.movedTotal,
		om.malformedTotal,
		om.protectedTotal,
		om.journalPruned,
	)

	return om
}
