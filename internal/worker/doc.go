// Package worker drains the work queue with a fixed set of consumer loops.
//
// Each loop dequeues one item at a time, executes it behind a panic boundary,
// and records the terminal outcome in the journal. A failing or panicking
// item never takes its consumer loop down. On stop the loops finish whatever
// item they hold; the stop context bounds how long the caller waits for that.
package worker
