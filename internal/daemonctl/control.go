// Package daemonctl orchestrates the daemon process from the CLI: launching
// it detached, waiting for the socket, requesting shutdown, and assembling
// status snapshots with offline fallbacks.
package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"conveyor/internal/api"
	"conveyor/internal/config"
	"conveyor/internal/ipc"
	"conveyor/internal/journal"
	"conveyor/internal/preflight"
)

// ErrDaemonNotRunning indicates daemon IPC is unavailable.
var ErrDaemonNotRunning = errors.New("daemon not running")

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	SocketPath string
	ConfigPath string
	LogLevel   string
}

// StartState describes the outcome of a start request.
type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult captures daemon start orchestration state.
type StartResult struct {
	State    StartState
	Launched bool
	PID      int
}

// StopResult captures daemon stop/termination outcome.
type StopResult struct {
	StopAcknowledged bool
	ForcedKill       bool
	PID              int
}

// RestartResult captures stop/start outcomes for daemon restart.
type RestartResult struct {
	WasRunning bool
	Stop       StopResult
	Start      StartResult
}

// Launch starts a detached conveyor daemon process.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	args := []string{"daemon"}
	if socket := strings.TrimSpace(opts.SocketPath); socket != "" {
		args = append(args, "--socket", socket)
	}
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		args = append(args, "--log-level", level)
	}

	proc := exec.Command(executablePath, args...)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// WaitForClient waits for IPC socket availability and returns a connected client.
func WaitForClient(socketPath string, timeout time.Duration) (*ipc.Client, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(socketPath)
		if err == nil {
			return client, nil
		}
		lastErr = err
		time.Sleep(200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for daemon")
	}
	return nil, fmt.Errorf("daemon failed to start: %w", lastErr)
}

// EnsureStarted launches the daemon unless one already answers on the socket.
func EnsureStarted(socketPath, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (StartResult, error) {
	if client, err := ipc.Dial(socketPath); err == nil {
		pingResp, pingErr := client.Ping()
		_ = client.Close()
		if pingErr == nil && pingResp != nil && pingResp.Pong {
			return StartResult{State: StartStateAlreadyRunning, PID: pingResp.PID}, nil
		}
	}

	if err := Launch(executablePath, opts); err != nil {
		return StartResult{}, err
	}
	client, err := WaitForClient(socketPath, waitTimeout)
	if err != nil {
		return StartResult{}, err
	}
	defer client.Close()

	result := StartResult{State: StartStateStarted, Launched: true}
	if pingResp, pingErr := client.Ping(); pingErr == nil && pingResp != nil {
		result.PID = pingResp.PID
	}
	return result, nil
}

// StopDaemon requests shutdown over IPC and force-kills the process if it is
// still answering after gracePeriod.
func StopDaemon(socketPath string, cfg *config.Config, gracePeriod time.Duration) (StopResult, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if isDaemonUnavailable(err) {
			return StopResult{}, ErrDaemonNotRunning
		}
		return StopResult{}, err
	}

	pid := 0
	if pingResp, pingErr := client.Ping(); pingErr == nil && pingResp != nil {
		pid = pingResp.PID
	}
	resp, err := client.Stop()
	_ = client.Close()
	if err != nil {
		return StopResult{}, err
	}
	result := StopResult{PID: pid}
	if resp != nil {
		result.StopAcknowledged = resp.Stopped
	}

	_ = WaitForShutdown(socketPath, gracePeriod)
	alive, livePID, aliveErr := ProcessInfo(socketPath)
	if aliveErr != nil {
		alive = false
	}
	if !alive {
		return result, nil
	}

	currentPID := livePID
	if currentPID == 0 {
		currentPID = pid
	}
	if cfg == nil {
		return result, fmt.Errorf("daemon still answering after %s and no config to locate its pid file", gracePeriod)
	}
	killedPID, killErr := ForceKillProcess(cfg.PidPath(), cfg.LockPath(), currentPID)
	if killErr != nil {
		return result, fmt.Errorf("failed to stop daemon process: %w", killErr)
	}
	_ = os.Remove(socketPath)
	result.ForcedKill = true
	result.PID = killedPID
	return result, nil
}

// Restart stops the daemon if running, then ensures it is started.
func Restart(socketPath string, cfg *config.Config, executablePath string, opts LaunchOptions, stopGracePeriod, startWaitTimeout time.Duration) (RestartResult, error) {
	stopResult, stopErr := StopDaemon(socketPath, cfg, stopGracePeriod)
	if stopErr != nil && !errors.Is(stopErr, ErrDaemonNotRunning) {
		return RestartResult{}, stopErr
	}

	startResult, err := EnsureStarted(socketPath, executablePath, opts, startWaitTimeout)
	if err != nil {
		return RestartResult{}, err
	}

	return RestartResult{
		WasRunning: stopErr == nil,
		Stop:       stopResult,
		Start:      startResult,
	}, nil
}

// WaitForShutdown waits for daemon IPC to disappear or report not-running.
func WaitForShutdown(socketPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(socketPath)
		if err != nil {
			if isDaemonUnavailable(err) {
				return nil
			}
			lastErr = err
			time.Sleep(200 * time.Millisecond)
			continue
		}
		status, statusErr := client.Status()
		_ = client.Close()
		if statusErr == nil && !status.Status.Running {
			return nil
		}
		if statusErr != nil {
			lastErr = statusErr
		} else {
			lastErr = fmt.Errorf("daemon still running")
		}
		time.Sleep(200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for shutdown")
	}
	return fmt.Errorf("daemon did not stop: %w", lastErr)
}

// ProcessInfo returns whether daemon IPC is reachable and the daemon PID when available.
func ProcessInfo(socketPath string) (bool, int, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if isDaemonUnavailable(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	defer client.Close()
	pingResp, pingErr := client.Ping()
	if pingErr != nil {
		return true, 0, pingErr
	}
	pid := 0
	if pingResp != nil {
		pid = pingResp.PID
	}
	return true, pid, nil
}

// ForceKillProcess sends SIGKILL to the daemon process and cleans pid/lock files.
func ForceKillProcess(pidPath, lockPath string, fallbackPID int) (int, error) {
	pid := fallbackPID
	data, err := os.ReadFile(pidPath)
	if err == nil {
		pidStr := strings.TrimSpace(string(data))
		if pidStr != "" {
			if parsed, parseErr := strconv.Atoi(pidStr); parseErr == nil && parsed > 0 {
				pid = parsed
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("read daemon pid file %q: %w", pidPath, err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("unable to determine daemon pid (pid file: %s)", pidPath)
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("refusing to kill current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Kill(); err != nil {
		return 0, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	if err := os.Remove(pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("remove pid file %q: %w", pidPath, err)
	}
	if lockPath != "" {
		_ = os.Remove(lockPath)
	}
	return pid, nil
}

// StatusSnapshot aggregates daemon status for display, with offline fallbacks
// derived from config and the journal on disk.
type StatusSnapshot struct {
	Online bool
	Status ipc.StatusView
	Stats  map[string]int
	Checks []preflight.Result
}

// BuildStatusSnapshot collects daemon status over IPC, falling back to local
// journal stats and preflight checks when the daemon is offline.
func BuildStatusSnapshot(ctx context.Context, socketPath string, cfg *config.Config) (*StatusSnapshot, error) {
	if cfg == nil {
		return nil, errors.New("configuration not available")
	}
	snap := &StatusSnapshot{}

	client, err := ipc.Dial(socketPath)
	if err == nil {
		defer client.Close()
		if resp, statusErr := client.Status(); statusErr == nil && resp != nil {
			snap.Status = resp.Status
			snap.Online = true
		}
		if history, histErr := client.History(1); histErr == nil && history != nil {
			snap.Stats = history.Stats
		}
	}
	if snap.Online {
		return snap, nil
	}

	snap.Status.Running = false
	snap.Status.JournalPath = journal.PathFor(cfg)
	snap.Status.LockPath = cfg.LockPath()
	snap.Status.SocketPath = socketPath
	snap.Status.LogPath = cfg.LogPath()

	queryCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if j, openErr := journal.Open(cfg); openErr == nil {
		if stats, statsErr := j.Stats(queryCtx); statsErr == nil {
			snap.Stats = api.MergeOutcomeStats(stats)
		}
		_ = j.Close()
	}
	snap.Checks = preflight.RunAll(queryCtx, cfg)
	return snap, nil
}

func isDaemonUnavailable(err error) bool {
	return os.IsNotExist(err) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.ECONNREFUSED)
}
