// Package daemonrun owns the daemon process runtime: signal handling, log
// file rotation, pid file management, preflight gating, and the wiring of the
// host to its IPC server. The CLI invokes Run for the foreground daemon
// command; everything else talks to the daemon through the socket.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"conveyor/internal/config"
	"conveyor/internal/daemon"
	"conveyor/internal/ipc"
	"conveyor/internal/logging"
	"conveyor/internal/preflight"
	"conveyor/internal/services"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the conveyor daemon runtime loop. It returns when the process
// receives SIGINT/SIGTERM or a client requests shutdown over IPC.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("conveyor-%s.log", runID))

	level := strings.TrimSpace(opts.LogLevel)
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update conveyor.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "conveyor-*.log", Exclude: []string{logPath}})

	pidPath := cfg.PidPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	logConfigSnapshot(logger, cfg)

	if failed := preflight.Failures(preflight.RunAll(signalCtx, cfg)); len(failed) > 0 {
		err := services.Wrap(services.ErrConfiguration, "daemon", "preflight", preflight.Summarize(failed), nil)
		logging.ErrorWithContext(logger, "preflight checks failed", "preflight_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "daemon exits without processing work"))
		return err
	}

	host, err := daemon.New(cfg, logger)
	if err != nil {
		logger.Error("create daemon host", logging.Error(err))
		return err
	}
	defer host.Close()

	// Start before binding the socket: when another instance holds the lock
	// this process must exit without touching the live daemon's socket file.
	if err := host.StartAll(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check configuration and whether another conveyor daemon is running"),
			logging.String(logging.FieldImpact, "daemon exits without processing work"))
		return err
	}

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), host, cancel, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	logger.Info("conveyor daemon ready",
		logging.String(logging.FieldEventType, "daemon_ready"),
		logging.String("socket", cfg.SocketPath()),
		logging.String("log_file", logPath),
		logging.Int("pid", os.Getpid()))

	<-signalCtx.Done()
	logger.Info("conveyor daemon shutting down")
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "conveyor.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.Int("consumer_count", cfg.Queue.ConsumerCount),
		logging.Bool("watcher_enabled", cfg.Watcher.Enabled),
		logging.String("watch_pattern", cfg.Watcher.Pattern),
		logging.Int("health_targets", len(cfg.Health.Targets)),
		logging.Duration("health_interval", cfg.Health.Interval()),
		logging.Duration("maintenance_interval", cfg.Scheduler.Interval()),
		logging.Duration("shutdown_grace", cfg.Daemon.ShutdownGrace()),
		logging.Bool("notifications_configured", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""))
}
