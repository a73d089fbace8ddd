// Package logging builds the process logger.
//
// Loggers are plain *slog.Logger values. Components derive their own logger
// with a "component" attribute:
//
//	logger := slog.Default().With("component", "schedule")
//
// When a record is logged with a context carrying a valid OpenTelemetry span
// context, the handler adds trace_id and span_id attributes.
package logging
