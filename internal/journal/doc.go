// Package journal persists terminal work outcomes and health probe results
// in a SQLite database under the configured data directory.
//
// The journal is a history, not a queue: only finished work is recorded.
// Pending items are never written, so nothing in here is replayed after a
// restart.
package journal
