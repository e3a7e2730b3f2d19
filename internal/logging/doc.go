// Package logging assembles structured slog loggers and formatting helpers used
// across measuremap.
//
// It owns the console and JSON handlers, fans records out to the terminal and
// a daily log file, applies per-component level overrides, and exposes
// context helpers so batch workers tag every line with the run ID and input
// file. The package also provides a no-op logger for tests and wiring code
// that cannot fail.
package logging
