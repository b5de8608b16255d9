package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"conveyor/internal/config"
)

const userAgent = "Conveyor/0.1.0"

// Service defines the notification surface exposed to daemon components.
type Service interface {
	NotifyDaemonStarted(ctx context.Context) error
	NotifyDaemonStopped(ctx context.Context, processed, failed uint64, uptime time.Duration) error
	NotifyItemFailed(ctx context.Context, itemID, kind, reason string) error
	NotifyHealthChanged(ctx context.Context, healthy, total int, unhealthy []string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:          resolveEndpoint(topic),
		client:            &http.Client{Timeout: timeout},
		daemonLifecycle:   cfg.Notifications.DaemonLifecycle,
		itemFailures:      cfg.Notifications.ItemFailures,
		healthTransitions: cfg.Notifications.HealthTransitions,
	}
}

// resolveEndpoint accepts either a bare topic name or a full URL.
func resolveEndpoint(topic string) string {
	if strings.Contains(topic, "://") {
		return topic
	}
	return "https://ntfy.sh/" + topic
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint          string
	client            *http.Client
	daemonLifecycle   bool
	itemFailures      bool
	healthTransitions bool
}

func (n *ntfyService) NotifyDaemonStarted(ctx context.Context) error {
	if !n.daemonLifecycle {
		return nil
	}
	data := payload{
		title:   "Conveyor - Started",
		message: "Daemon started and accepting work",
		tags:    []string{"conveyor", "daemon", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDaemonStopped(ctx context.Context, processed, failed uint64, uptime time.Duration) error {
	if !n.daemonLifecycle {
		return nil
	}
	uptime = uptime.Round(time.Second)
	if uptime < 0 {
		uptime = 0
	}

	var message string
	if failed == 0 {
		message = fmt.Sprintf("Daemon stopped: %d items processed, up %s", processed, uptime)
	} else {
		message = fmt.Sprintf("Daemon stopped: %d succeeded, %d failed, up %s", processed, failed, uptime)
	}
	data := payload{
		title:   "Conveyor - Stopped",
		message: message,
		tags:    []string{"conveyor", "daemon", "stopped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyItemFailed(ctx context.Context, itemID, kind, reason string) error {
	if !n.itemFailures {
		return nil
	}
	itemID = strings.TrimSpace(itemID)
	kind = strings.TrimSpace(kind)
	if kind == "" {
		kind = "unknown"
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "no error detail"
	}
	data := payload{
		title:    "Conveyor - Item Failed",
		message:  fmt.Sprintf("❌ %s item %s failed: %s", kind, itemID, reason),
		tags:     []string{"conveyor", "item", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyHealthChanged(ctx context.Context, healthy, total int, unhealthy []string) error {
	if !n.healthTransitions {
		return nil
	}

	var data payload
	if healthy == total {
		data = payload{
			title:   "Conveyor - Health Recovered",
			message: fmt.Sprintf("✅ All %d targets healthy", total),
			tags:    []string{"conveyor", "health", "recovered"},
		}
	} else {
		message := fmt.Sprintf("%d of %d targets healthy", healthy, total)
		if len(unhealthy) > 0 {
			message = fmt.Sprintf("%s\nUnhealthy: %s", message, strings.Join(unhealthy, ", "))
		}
		data = payload{
			title:    "Conveyor - Health Degraded",
			message:  message,
			tags:     []string{"conveyor", "health", "degraded"},
			priority: "high",
		}
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Conveyor - Test",
		message:  "Notification system test",
		tags:     []string{"conveyor", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyDaemonStarted(context.Context) error { return nil }

func (noopService) NotifyDaemonStopped(context.Context, uint64, uint64, time.Duration) error {
	return nil
}

func (noopService) NotifyItemFailed(context.Context, string, string, string) error { return nil }

func (noopService) NotifyHealthChanged(context.Context, int, int, []string) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }
