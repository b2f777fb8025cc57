// Package logging assembles structured slog loggers and formatting helpers used
// across goodwatch components.
//
// It owns the console (key=value) and JSON handlers, centralizes level and
// output plumbing, and exposes context-aware helpers so request handlers and
// background pool refills tag their log lines with request, session and view
// identifiers. A no-op logger is provided for tests and wiring code.
package logging
