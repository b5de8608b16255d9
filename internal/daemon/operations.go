package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"conveyor/internal/health"
	"conveyor/internal/ingest"
	"conveyor/internal/journal"
	"conveyor/internal/logging"
	"conveyor/internal/queue"
	"conveyor/internal/services"
	"conveyor/internal/watchfs"
	"conveyor/internal/worker"
)

// Status is the host's runtime summary, assembled for IPC and CLI display.
type Status struct {
	Running       bool
	PID           int
	StartedAt     time.Time
	Uptime        time.Duration
	QueueDepth    int
	QueueAccepted uint64
	Pool          worker.Stats
	Watcher       *watchfs.Stats
	Health        []health.TargetStatus
	JournalPath   string
	LockPath      string
	SocketPath    string
	LogPath       string
}

// Status reports the current state of every component.
func (h *Host) Status() Status {
	status := Status{
		Running:       h.running.Load(),
		PID:           os.Getpid(),
		QueueDepth:    h.queue.Len(),
		QueueAccepted: h.queue.Enqueued(),
		Pool:          h.pool.Stats(),
		Health:        h.health.Snapshot(),
		JournalPath:   h.journal.Path(),
		LockPath:      h.lockPath,
		SocketPath:    h.cfg.SocketPath(),
		LogPath:       h.LogPath(),
	}
	if h.watcher != nil {
		stats := h.watcher.Stats()
		status.Watcher = &stats
	}
	if status.Running {
		h.mu.Lock()
		status.StartedAt = h.started
		h.mu.Unlock()
		status.Uptime = time.Since(status.StartedAt).Round(time.Second)
	}
	return status
}

// Enqueue hands an item to the shared work queue. The queue is unbounded and
// accepts items whether or not the host is running; consumers drain it once
// started.
func (h *Host) Enqueue(item queue.Item) {
	h.queue.Enqueue(item)
}

// Submit enqueues one work item from an external producer. Only the ingest
// kind is accepted; the payload is the file to analyze.
func (h *Host) Submit(kind, payload string) (string, error) {
	if !h.running.Load() {
		return "", services.Wrap(services.ErrUnavailable, "daemon", "submit", "daemon is not running", nil)
	}

	switch strings.TrimSpace(kind) {
	case "", ingest.Kind:
	default:
		return "", services.Wrap(services.ErrValidation, "daemon", "submit", fmt.Sprintf("unknown work kind %q", kind), nil)
	}

	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "daemon", "submit", "payload path is required", nil)
	}
	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "daemon", "submit", "resolve payload path", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		marker := services.ErrTransient
		if errors.Is(err, os.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return "", services.Wrap(marker, "daemon", "submit", "stat payload", err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrValidation, "daemon", "submit", fmt.Sprintf("payload %q is a directory", absPath), nil)
	}

	item := ingest.NewFileTask(absPath, h.base)
	h.queue.Enqueue(item)
	h.logger.Info("item submitted",
		logging.String(logging.FieldItemID, item.ID()),
		logging.String(logging.FieldItemKind, item.Kind()),
		logging.String(logging.FieldPath, absPath),
	)
	return item.ID(), nil
}

// History returns the most recent terminal outcomes, newest first.
func (h *Host) History(ctx context.Context, limit int) ([]journal.Outcome, error) {
	return h.journal.ListRecent(ctx, limit)
}

// OutcomeStats returns the journal's per-status counts.
func (h *Host) OutcomeStats(ctx context.Context) (map[journal.Status]int, error) {
	return h.journal.Stats(ctx)
}

// HealthSnapshot returns the latest per-target probe state.
func (h *Host) HealthSnapshot() []health.TargetStatus {
	return h.health.Snapshot()
}
