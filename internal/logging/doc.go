// Package logging assembles structured slog loggers and formatting helpers used
// across vidgen.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so preview and task code can
// tag log lines with task IDs, surface names, and correlation IDs. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
