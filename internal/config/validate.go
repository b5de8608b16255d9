package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
)

// Validate checks the configuration for invalid or conflicting values.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateWatcher(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if err := c.validateHealth(); err != nil {
		return err
	}
	if err := c.validateDaemon(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	required := map[string]string{
		"paths.data_dir": c.Paths.DataDir,
		"paths.log_dir":  c.Paths.LogDir,
	}
	for _, key := range sortedKeys(required) {
		if strings.TrimSpace(required[key]) == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}
	return nil
}

func (c *Config) validateQueue() error {
	if c.Queue.ConsumerCount < 1 {
		return fmt.Errorf("queue.consumer_count must be at least 1, got %d", c.Queue.ConsumerCount)
	}
	return nil
}

func (c *Config) validateWatcher() error {
	if !c.Watcher.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Paths.WatchDir) == "" {
		return fmt.Errorf("paths.watch_dir must be set when watcher.enabled is true")
	}
	if c.Watcher.Pattern == "" {
		return fmt.Errorf("watcher.pattern must not be empty when watcher.enabled is true")
	}
	if _, err := filepath.Match(c.Watcher.Pattern, "probe.txt"); err != nil {
		return fmt.Errorf("watcher.pattern %q is not a valid glob: %w", c.Watcher.Pattern, err)
	}
	if c.Watcher.SettleDelayMs < 0 {
		return fmt.Errorf("watcher.settle_delay_ms must not be negative, got %d", c.Watcher.SettleDelayMs)
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if c.Scheduler.IntervalSeconds < 1 {
		return fmt.Errorf("scheduler.interval_seconds must be at least 1, got %d", c.Scheduler.IntervalSeconds)
	}
	return nil
}

func (c *Config) validateHealth() error {
	if c.Health.IntervalSeconds < 1 {
		return fmt.Errorf("health.interval_seconds must be at least 1, got %d", c.Health.IntervalSeconds)
	}
	if c.Health.TimeoutSeconds < 1 {
		return fmt.Errorf("health.timeout_seconds must be at least 1, got %d", c.Health.TimeoutSeconds)
	}

	seen := make(map[string]struct{}, len(c.Health.Targets))
	for i, target := range c.Health.Targets {
		if target.Name == "" {
			return fmt.Errorf("health.targets[%d].name must not be empty", i)
		}
		if _, dup := seen[target.Name]; dup {
			return fmt.Errorf("health.targets contains duplicate name %q", target.Name)
		}
		seen[target.Name] = struct{}{}

		if target.URL == "" {
			return fmt.Errorf("health.targets[%d] (%s): url must not be empty", i, target.Name)
		}
		parsed, err := url.Parse(target.URL)
		if err != nil {
			return fmt.Errorf("health.targets[%d] (%s): invalid url: %w", i, target.Name, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("health.targets[%d] (%s): url scheme must be http or https, got %q", i, target.Name, parsed.Scheme)
		}
		if target.TimeoutSeconds < 0 {
			return fmt.Errorf("health.targets[%d] (%s): timeout_seconds must not be negative", i, target.Name)
		}
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.ShutdownGraceSeconds < 0 {
		return fmt.Errorf("daemon.shutdown_grace_seconds must not be negative, got %d", c.Daemon.ShutdownGraceSeconds)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	if !validLogLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}

	if c.Logging.RetentionDays < 0 {
		return fmt.Errorf("logging.retention_days must not be negative, got %d", c.Logging.RetentionDays)
	}

	for _, component := range sortedKeys(c.Logging.ComponentOverrides) {
		level := c.Logging.ComponentOverrides[component]
		if !validLogLevel(strings.ToLower(strings.TrimSpace(level))) {
			return fmt.Errorf("logging.component_overrides[%q] must be debug, info, warn, or error, got %q", component, level)
		}
	}
	return nil
}

func validLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
