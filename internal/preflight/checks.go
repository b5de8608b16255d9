package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"conveyor/internal/config"
	"conveyor/internal/journal"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckWatchDirectory verifies that the directory exists and can be read and
// traversed. The watcher never writes to the directory it observes, so write
// permission is not required.
func CheckWatchDirectory(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckJournal verifies that the outcome journal can be opened and queried.
func CheckJournal(ctx context.Context, cfg *config.Config) Result {
	const name = "Journal"

	j, err := journal.Open(cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("open failed: %v", err)}
	}
	defer j.Close()

	if _, err := j.Stats(ctx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("query failed: %v", err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (ready)", j.Path())}
}
