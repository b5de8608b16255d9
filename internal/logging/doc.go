// Package logging assembles structured slog loggers and formatting helpers
// used across conveyor components.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and exposes context-aware helpers so background loops can
// automatically tag log lines with work item IDs, worker names, and
// correlation IDs. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape and routing guarantees as the rest of the
// system.
package logging
