// Package logging assembles structured slog loggers and formatting helpers used
// across Lathe services.
//
// It centralizes level and output plumbing for the console and JSON handlers
// and exposes typed attribute helpers so viewer and daemon code tag log lines
// with the same field names. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging
