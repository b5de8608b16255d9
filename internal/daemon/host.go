package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"conveyor/internal/config"
	"conveyor/internal/health"
	"conveyor/internal/journal"
	"conveyor/internal/logging"
	"conveyor/internal/notifications"
	"conveyor/internal/queue"
	"conveyor/internal/schedule"
	"conveyor/internal/services"
	"conveyor/internal/watchfs"
	"conveyor/internal/worker"
)

// Host wires the processing components together and drives their lifecycle.
type Host struct {
	cfg      *config.Config
	logger   *slog.Logger
	base     *slog.Logger
	journal  *journal.Journal
	queue    *queue.Queue
	pool     *worker.Pool
	watcher  *watchfs.Watcher
	health   *health.Runner
	upkeep   *schedule.Trigger
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	started time.Time
}

// New constructs the host and all of its components. The journal is opened
// here; a data directory that cannot hold it is a fatal startup failure.
func New(cfg *config.Config, logger *slog.Logger) (*Host, error) {
	if cfg == nil {
		return nil, errors.New("host requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "daemon", "new", "prepare directories", err)
	}
	j, err := journal.Open(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "daemon", "new", "open journal", err)
	}

	q := queue.New()
	notifier := notifications.NewService(cfg)

	h := &Host{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(componentLogger(cfg, logger, "daemon"), "daemon"),
		base:     logger,
		journal:  j,
		queue:    q,
		pool:     worker.NewPool(cfg, q, j, notifier, componentLogger(cfg, logger, "worker")),
		health:   health.NewRunner(cfg, j, notifier, componentLogger(cfg, logger, "health")),
		notifier: notifier,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	if cfg.Watcher.Enabled {
		h.watcher = watchfs.New(cfg, q, componentLogger(cfg, logger, "watcher"))
	}
	h.upkeep = schedule.NewTrigger("upkeep", cfg.Scheduler.Interval(), h.maintain, componentLogger(cfg, logger, "schedule"))
	return h, nil
}

// componentLogger applies any [logging] component_overrides level before the
// component attaches its own attributes.
func componentLogger(cfg *config.Config, logger *slog.Logger, component string) *slog.Logger {
	if level, ok := logging.ComponentLevel(cfg.Logging.ComponentOverrides, component); ok {
		return logging.WithLevelOverride(logger, level)
	}
	return logger
}

// StartAll acquires the single-instance lock and starts every component. On
// any component failure the ones already started are stopped again and the
// error is returned as fatal.
func (h *Host) StartAll(ctx context.Context) error {
	if h.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := h.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "daemon", "start", "acquire instance lock", err)
	}
	if !ok {
		return services.Wrap(services.ErrUnavailable, "daemon", "start", "another conveyor daemon already holds "+h.lockPath, nil)
	}

	runCtx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancel = cancel
	h.started = time.Now()
	h.mu.Unlock()

	startErr := h.pool.Start(runCtx)
	if startErr == nil && h.watcher != nil {
		startErr = h.watcher.Start(runCtx)
	}
	if startErr == nil {
		startErr = h.health.Start(runCtx)
	}
	if startErr == nil {
		startErr = h.upkeep.Start(runCtx)
	}
	if startErr != nil {
		// Every Stop is a no-op for a component that never started, so one
		// unwind path covers all four failure points.
		h.upkeep.Stop()
		h.health.Stop()
		if h.watcher != nil {
			h.watcher.Stop()
		}
		_ = h.stopPool()
		cancel()
		h.mu.Lock()
		h.cancel = nil
		h.mu.Unlock()
		_ = h.lock.Unlock()
		return services.Wrap(services.ErrUnavailable, "daemon", "start", "component startup failed", startErr)
	}

	h.running.Store(true)
	h.logger.Info("daemon started",
		logging.Int("consumers", h.cfg.Queue.ConsumerCount),
		logging.Bool("watcher", h.watcher != nil),
		logging.Int("health_targets", len(h.cfg.Health.Targets)),
		logging.String("lock", h.lockPath),
	)

	notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer notifyCancel()
	if err := h.notifier.NotifyDaemonStarted(notifyCtx); err != nil {
		h.logger.Debug("start notification failed", logging.Error(err))
	}
	return nil
}

// StopAll stops intake first, then waits up to the configured grace period
// for in-flight work before releasing the lock. Components that refuse to
// finish within the grace period are abandoned to the process exit.
func (h *Host) StopAll() {
	if !h.running.Load() {
		return
	}
	h.running.Store(false)

	if h.watcher != nil {
		h.watcher.Stop()
	}
	h.upkeep.Stop()
	h.health.Stop()
	graceErr := h.stopPool()

	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	started := h.started
	h.mu.Unlock()

	if err := h.lock.Unlock(); err != nil {
		logging.WarnWithContext(h.logger, "instance lock not released", "lock_release_failed",
			logging.String(logging.FieldPath, h.lockPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the lock file before the next start"),
			logging.String(logging.FieldImpact, "the next daemon start may refuse to run"),
		)
	}

	stats := h.pool.Stats()
	uptime := time.Since(started).Round(time.Second)
	if graceErr != nil {
		logging.WarnWithContext(h.logger, "daemon stopped with work still in flight", "shutdown_grace_expired",
			logging.Int("in_flight", stats.InFlight),
			logging.String(logging.FieldErrorHint, "raise shutdown_grace_seconds if items legitimately run long"),
			logging.String(logging.FieldImpact, "an in-flight item may have been cut short"),
		)
	} else {
		h.logger.Info("daemon stopped",
			logging.Uint64("processed", stats.Processed),
			logging.Uint64("failed", stats.Failed),
			logging.Duration("uptime", uptime),
		)
	}

	notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.notifier.NotifyDaemonStopped(notifyCtx, stats.Processed, stats.Failed, uptime); err != nil {
		h.logger.Debug("stop notification failed", logging.Error(err))
	}
}

func (h *Host) stopPool() error {
	graceCtx, cancel := context.WithTimeout(context.Background(), h.cfg.Daemon.ShutdownGrace())
	defer cancel()
	return h.pool.Stop(graceCtx)
}

// Close stops everything and releases the journal.
func (h *Host) Close() error {
	h.StopAll()
	if h.journal != nil {
		return h.journal.Close()
	}
	return nil
}

// Running reports whether StartAll has completed and StopAll has not.
func (h *Host) Running() bool {
	return h.running.Load()
}

// maintain is the recurring upkeep pass: prune old journal history and old
// run logs using the configured retention window.
func (h *Host) maintain(ctx context.Context) {
	retention := h.cfg.Logging.RetentionDays
	if retention <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retention)

	outcomes, err := h.journal.PruneOutcomesBefore(ctx, cutoff)
	if err != nil {
		logging.WarnWithContext(h.logger, "outcome pruning failed", "journal_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check data_dir free space and permissions"),
			logging.String(logging.FieldImpact, "journal keeps growing"),
		)
	}
	probes, err := h.journal.PruneProbesBefore(ctx, cutoff)
	if err != nil {
		logging.WarnWithContext(h.logger, "probe pruning failed", "journal_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check data_dir free space and permissions"),
			logging.String(logging.FieldImpact, "journal keeps growing"),
		)
	}

	logging.CleanupOldLogs(h.base, retention, logging.RetentionTarget{
		Dir:     h.cfg.Paths.LogDir,
		Pattern: "conveyor-*.log",
		Exclude: []string{h.LogPath()},
	})

	if outcomes > 0 || probes > 0 {
		h.logger.Info("maintenance pass complete",
			logging.Int64("outcomes_pruned", outcomes),
			logging.Int64("probes_pruned", probes),
		)
	}
}

// LogPath returns the stable pointer to the current run's log file.
func (h *Host) LogPath() string {
	return h.cfg.LogPath()
}

// LockPath returns the single-instance lock file path.
func (h *Host) LockPath() string {
	return h.lockPath
}
