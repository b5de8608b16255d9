// Package daemon owns the lifecycle of the background processing components:
// the work queue, the consumer pool, the filesystem watcher, the health probe
// runner, and the maintenance cadence. Every component is constructed
// explicitly and handed its collaborators, so tests can assemble the same
// host with substitutes. A file lock enforces one daemon per data directory.
package daemon
