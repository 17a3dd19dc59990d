// Package infrastructure holds the cross-cutting runtime pieces of the CLI:
// the slog logger with run_id injection, OpenTelemetry tracing to a file,
// and the Prometheus metrics written at the end of a run.
package infrastructure
