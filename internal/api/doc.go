// Package api defines wire-format types and converters for the IPC layer.
// It translates internal daemon models into transport-friendly DTOs that the
// CLI and other consumers can render without coupling to internal types.
//
// # Key Types
//
// OutcomeView: transport representation of a finished work item with its
// status, error detail, and timing.
//
// ProbeView: latest observed state of one health target.
//
// StatusView: aggregated daemon runtime information including queue depth,
// worker pool counters, watcher counters, and health probe results.
//
// # Converters
//
// FromOutcome / FromOutcomes: journal.Outcome -> OutcomeView.
//
// FromTargetStatus / FromTargetStatuses: health.TargetStatus -> ProbeView.
//
// FromStatus: daemon.Status -> StatusView.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Internal enums (journal.Status, worker.State,
// health.Status) are exposed as lowercase strings. Timestamps use RFC3339 with
// milliseconds; durations are reported in milliseconds so consumers never
// parse Go duration syntax.
package api
