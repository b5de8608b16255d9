package config

import (
	"os"
	"strings"
)

// normalize expands paths and applies environment fallbacks so the rest of the
// daemon can treat the config as fully resolved.
func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if strings.TrimSpace(c.Paths.WatchDir) != "" {
		if c.Paths.WatchDir, err = expandPath(c.Paths.WatchDir); err != nil {
			return err
		}
	}

	c.Watcher.Pattern = strings.TrimSpace(c.Watcher.Pattern)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		c.Notifications.NtfyTopic = strings.TrimSpace(os.Getenv("CONVEYOR_NTFY_TOPIC"))
	}

	for i := range c.Health.Targets {
		c.Health.Targets[i].Name = strings.TrimSpace(c.Health.Targets[i].Name)
		c.Health.Targets[i].URL = strings.TrimSpace(c.Health.Targets[i].URL)
	}

	return nil
}
