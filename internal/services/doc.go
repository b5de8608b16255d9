// Package services defines shared utilities consumed by the background
// processing components.
//
// Key responsibilities:
//   - Context helpers that stamp work item IDs, item kinds, worker names, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent journal failure kinds.
//
// Use these helpers when wiring new work kinds so operational behaviour
// (error handling, observability) stays uniform across the system.
package services
