// Package queue provides the in-memory FIFO work queue that decouples
// producers (CLI submissions, the filesystem watcher, periodic maintenance)
// from the consumer loops that execute work.
//
// The queue is unbounded: Enqueue never blocks and never fails. Dequeue
// blocks until an item is available or the caller's context is cancelled.
// Pending items live only in process memory; work that must survive a
// restart has to be resubmitted by its producer.
package queue
