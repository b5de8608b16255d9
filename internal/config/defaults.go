package config

// Default configuration values.
const (
	DefaultDataDir  = "~/.local/share/conveyor"
	DefaultLogDir   = "~/.local/share/conveyor/logs"
	DefaultWatchDir = "~/.local/share/conveyor/inbox"

	DefaultConsumerCount = 2

	DefaultWatcherPattern = "*.txt"
	DefaultSettleDelayMs  = 500

	DefaultSchedulerIntervalSeconds = 300

	DefaultHealthIntervalSeconds = 60
	DefaultHealthTimeoutSeconds  = 30

	DefaultNotificationTimeout = 10

	DefaultShutdownGraceSeconds = 30

	DefaultLogFormat     = "console"
	DefaultLogLevel      = "info"
	DefaultRetentionDays = 30
)

// Default returns a Config populated with default values. The result is valid
// without further edits: the watcher and health prober stay disabled until the
// operator points them at real directories and endpoints.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  DefaultDataDir,
			LogDir:   DefaultLogDir,
			WatchDir: DefaultWatchDir,
		},
		Queue: Queue{
			ConsumerCount: DefaultConsumerCount,
		},
		Watcher: Watcher{
			Enabled:       false,
			Pattern:       DefaultWatcherPattern,
			SettleDelayMs: DefaultSettleDelayMs,
		},
		Scheduler: Scheduler{
			IntervalSeconds: DefaultSchedulerIntervalSeconds,
		},
		Health: Health{
			IntervalSeconds: DefaultHealthIntervalSeconds,
			TimeoutSeconds:  DefaultHealthTimeoutSeconds,
			Targets:         nil,
		},
		Notifications: Notifications{
			NtfyTopic:         "",
			RequestTimeout:    DefaultNotificationTimeout,
			DaemonLifecycle:   true,
			ItemFailures:      true,
			HealthTransitions: true,
		},
		Daemon: Daemon{
			ShutdownGraceSeconds: DefaultShutdownGraceSeconds,
		},
		Logging: Logging{
			Format:             DefaultLogFormat,
			Level:              DefaultLogLevel,
			RetentionDays:      DefaultRetentionDays,
			ComponentOverrides: map[string]string{},
		},
	}
}
