package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	WatchDir string `toml:"watch_dir"`
}

// Queue contains configuration for the in-memory work queue consumers.
type Queue struct {
	ConsumerCount int `toml:"consumer_count"`
}

// Watcher contains configuration for filesystem change detection.
type Watcher struct {
	Enabled       bool   `toml:"enabled"`
	Pattern       string `toml:"pattern"`
	SettleDelayMs int    `toml:"settle_delay_ms"`
}

// SettleDelay returns the quiet period applied before a changed file is read.
func (w Watcher) SettleDelay() time.Duration {
	return time.Duration(w.SettleDelayMs) * time.Millisecond
}

// Scheduler contains configuration for the recurring maintenance tick.
type Scheduler struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// Interval returns the maintenance tick cadence.
func (s Scheduler) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// HealthTarget describes one outbound probe destination.
type HealthTarget struct {
	Name           string `toml:"name"`
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-target probe timeout, falling back to the section
// default when the target does not override it.
func (t HealthTarget) Timeout(fallback time.Duration) time.Duration {
	if t.TimeoutSeconds > 0 {
		return time.Duration(t.TimeoutSeconds) * time.Second
	}
	return fallback
}

// Health contains configuration for periodic outbound health probes.
type Health struct {
	IntervalSeconds int            `toml:"interval_seconds"`
	TimeoutSeconds  int            `toml:"timeout_seconds"`
	Targets         []HealthTarget `toml:"targets"`
}

// Interval returns the probe tick cadence.
func (h Health) Interval() time.Duration {
	return time.Duration(h.IntervalSeconds) * time.Second
}

// DefaultTimeout returns the section-wide probe timeout.
func (h Health) DefaultTimeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic         string `toml:"ntfy_topic"`
	RequestTimeout    int    `toml:"request_timeout"`
	DaemonLifecycle   bool   `toml:"daemon_lifecycle"`
	ItemFailures      bool   `toml:"item_failures"`
	HealthTransitions bool   `toml:"health_transitions"`
}

// Daemon contains configuration for daemon lifecycle behavior.
type Daemon struct {
	ShutdownGraceSeconds int `toml:"shutdown_grace_seconds"`
}

// ShutdownGrace returns how long StopAll waits for in-flight work.
func (d Daemon) ShutdownGrace() time.Duration {
	return time.Duration(d.ShutdownGraceSeconds) * time.Second
}

// Logging contains configuration for log output.
type Logging struct {
	Format             string            `toml:"format"`
	Level              string            `toml:"level"`
	RetentionDays      int               `toml:"retention_days"`
	ComponentOverrides map[string]string `toml:"component_overrides"`
}

// Config encapsulates all configuration values for conveyor.
//
// Configuration sections by subsystem:
//   - Paths: data, log, and watch directories
//   - Queue: consumer loop count for the in-memory work queue
//   - Watcher: filesystem change detection and settle delay
//   - Scheduler: recurring maintenance tick cadence
//   - Health: outbound probe targets, cadence, and timeouts
//   - Notifications: ntfy push notification settings
//   - Daemon: shutdown grace period
//   - Logging: log format, level, retention, and per-component overrides
type Config struct {
	Paths         Paths         `toml:"paths"`
	Queue         Queue         `toml:"queue"`
	Watcher       Watcher       `toml:"watcher"`
	Scheduler     Scheduler     `toml:"scheduler"`
	Health        Health        `toml:"health"`
	Notifications Notifications `toml:"notifications"`
	Daemon        Daemon        `toml:"daemon"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/conveyor/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/conveyor/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("conveyor.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// SocketPath returns the daemon's IPC socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.LogDir, "conveyor.sock")
}

// LockPath returns the daemon's single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "conveyord.lock")
}

// PidPath returns where the daemon records its process id.
func (c *Config) PidPath() string {
	return filepath.Join(c.Paths.DataDir, "conveyord.pid")
}

// LogPath returns the stable pointer to the current daemon log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "conveyor.log")
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Watcher.Enabled && strings.TrimSpace(c.Paths.WatchDir) != "" {
		if err := os.MkdirAll(c.Paths.WatchDir, 0o755); err != nil {
			return fmt.Errorf("create watch directory %q: %w", c.Paths.WatchDir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
