package testsupport

import (
	"path/filepath"
	"testing"
	"time"

	"conveyor/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The recurring loops are slowed to an hour so tests drive them explicitly,
// and the watcher settle delay is shortened to keep tests fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.WatchDir = filepath.Join(base, "inbox")
	cfgVal.Queue.ConsumerCount = 1
	cfgVal.Watcher.SettleDelayMs = 40
	cfgVal.Scheduler.IntervalSeconds = 3600
	cfgVal.Health.IntervalSeconds = 3600
	cfgVal.Health.TimeoutSeconds = 2
	cfgVal.Daemon.ShutdownGraceSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithConsumerCount sets the number of consumer loops on the test config.
func WithConsumerCount(count int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.ConsumerCount = count
	}
}

// WithWatcher enables the filesystem watcher with the given filename pattern
// and settle delay.
func WithWatcher(pattern string, settle time.Duration) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Watcher.Enabled = true
		b.cfg.Watcher.Pattern = pattern
		b.cfg.Watcher.SettleDelayMs = int(settle.Milliseconds())
	}
}

// WithHealthTargets sets the outbound probe targets on the test config.
func WithHealthTargets(targets ...config.HealthTarget) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Health.Targets = targets
	}
}

// WithShutdownGrace overrides how long StopAll waits for in-flight work.
func WithShutdownGrace(grace time.Duration) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Daemon.ShutdownGraceSeconds = int(grace.Seconds())
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
