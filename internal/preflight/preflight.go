package preflight

import (
	"context"
	"strings"

	"conveyor/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Data and log directories (always checked)
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	// Watch directory (when the watcher is enabled)
	if cfg.Watcher.Enabled {
		results = append(results, CheckWatchDirectory("Watch directory", cfg.Paths.WatchDir))
	}

	// Journal storage (always checked)
	results = append(results, CheckJournal(ctx, cfg))

	return results
}

// Failures filters results down to the checks that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Summarize renders failed checks as a single human-readable line.
func Summarize(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, result := range results {
		parts = append(parts, result.Name+": "+result.Detail)
	}
	return strings.Join(parts, "; ")
}
