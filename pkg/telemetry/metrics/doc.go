// Package metrics exposes Prometheus metrics for run directory operations.
//
// # Metrics
//
//   - <ns>_create_total{root,status}: run directories created
//   - <ns>_clean_total{root,outcome}: cleaning passes by outcome
//   - <ns>_clean_duration_seconds{root}: cleaning pass duration
//   - <ns>_deleted_total{root}: archived runs deleted
//   - <ns>_moved_total{root}: active runs archived
//   - <ns>_malformed_total{root}: names skipped as malformed
//   - <ns>_protected_files_total{root,extension}: passes blocked by a protected file
//   - <ns>_entries{root,location}: entries per location after the last pass
//   - <ns>_last_clean_timestamp_seconds{root}: completion time of the last pass
//   - <ns>_journal_pruned_total: journal records removed by retention
//
// Collector implements rundir.MetricsRecorder. Metrics are registered on a
// dedicated registry served by Handler:
//
//	collector := metrics.NewCollector(&metrics.Config{Namespace: "rundir"}, nil)
//	mux.Handle("/metrics", collector.Handler())
package metrics
