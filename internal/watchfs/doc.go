// Package watchfs feeds filesystem changes into the work queue. It observes a
// single directory (non-recursive) for filenames matching a glob pattern,
// lets each changed path settle before acting so editors that write in bursts
// produce one work item, and treats deletions as log-only events that cancel
// any pending settle timer for the path.
package watchfs
