// Package config loads, normalizes, and validates conveyor configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CONVEYOR_NTFY_TOPIC. The Config type centralizes every knob the daemon and
// CLI need, allowing watch/data directories, probe targets, and timing
// intervals to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
