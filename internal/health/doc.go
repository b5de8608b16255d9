// Package health probes configured HTTP targets on a fixed cadence. Each
// sweep checks every target concurrently with an independent timeout and
// waits for all of them, so one slow target delays the sweep by at most its
// own timeout and never cancels its siblings. Results are kept in memory for
// status displays, persisted to the journal, and summarized in the log as
// "N of M healthy".
package health
