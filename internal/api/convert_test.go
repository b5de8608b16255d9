package api

import (
	"testing"
	"time"

	"conveyor/internal/daemon"
	"conveyor/internal/health"
	"conveyor/internal/journal"
	"conveyor/internal/watchfs"
	"conveyor/internal/worker"
)

func TestFromOutcomeFormatsFields(t *testing.T) {
	finished := time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)
	dto := FromOutcome(journal.Outcome{
		ID:           7,
		ItemID:       "550e8400-e29b-41d4-a716-446655440000",
		Kind:         "ingest",
		Worker:       "worker-1",
		Status:       journal.StatusFailed,
		ErrorMessage: "transient: read failed",
		Duration:     1500 * time.Millisecond,
		FinishedAt:   finished,
	})
	if dto.Status != "failed" {
		t.Fatalf("expected status failed, got %q", dto.Status)
	}
	if dto.DurationMS != 1500 {
		t.Fatalf("expected duration 1500ms, got %d", dto.DurationMS)
	}
	if dto.FinishedAt != "2026-03-14T09:26:53.000Z" {
		t.Fatalf("unexpected timestamp: %q", dto.FinishedAt)
	}
}

func TestFromOutcomesPreservesOrder(t *testing.T) {
	views := FromOutcomes([]journal.Outcome{
		{ID: 2, Kind: "ingest"},
		{ID: 1, Kind: "sequence"},
	})
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].ID != 2 || views[1].ID != 1 {
		t.Fatalf("order not preserved: %+v", views)
	}
	if FromOutcomes(nil) != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestFromStatusIncludesComponents(t *testing.T) {
	started := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	checked := started.Add(5 * time.Minute)
	view := FromStatus(daemon.Status{
		Running:       true,
		PID:           4242,
		StartedAt:     started,
		Uptime:        5 * time.Minute,
		QueueDepth:    3,
		QueueAccepted: 14,
		Pool: worker.Stats{
			State:     worker.StateRunning,
			Consumers: 2,
			InFlight:  1,
			Processed: 10,
			Failed:    1,
		},
		Watcher: &watchfs.Stats{EventsSeen: 8, ItemsEnqueued: 4, PendingSettles: 1},
		Health: []health.TargetStatus{{
			Name:        "upstream",
			URL:         "http://localhost:9000/healthz",
			Status:      health.StatusHealthy,
			StatusCode:  200,
			Latency:     12 * time.Millisecond,
			LastChecked: checked,
		}},
		JournalPath: "/var/lib/conveyor/journal.db",
	})
	if !view.Running || view.PID != 4242 {
		t.Fatalf("unexpected identity fields: %+v", view)
	}
	if view.UptimeMS != 300000 {
		t.Fatalf("expected uptime 300000ms, got %d", view.UptimeMS)
	}
	if view.QueueDepth != 3 || view.QueueAccepted != 14 {
		t.Fatalf("unexpected queue counters: %+v", view)
	}
	if view.Pool.State != "running" || view.Pool.Processed != 10 {
		t.Fatalf("unexpected pool view: %+v", view.Pool)
	}
	if view.Watcher == nil || view.Watcher.ItemsEnqueued != 4 {
		t.Fatalf("unexpected watcher view: %+v", view.Watcher)
	}
	if len(view.Health) != 1 || view.Health[0].Status != "healthy" || view.Health[0].LatencyMS != 12 {
		t.Fatalf("unexpected health view: %+v", view.Health)
	}
}

func TestFromStatusOmitsDisabledWatcher(t *testing.T) {
	view := FromStatus(daemon.Status{Running: true})
	if view.Watcher != nil {
		t.Fatalf("expected nil watcher view when watching is disabled")
	}
	if view.Health != nil {
		t.Fatalf("expected nil health view when no targets are configured")
	}
}

func TestMergeOutcomeStats(t *testing.T) {
	merged := MergeOutcomeStats(map[journal.Status]int{
		journal.StatusCompleted: 9,
		journal.StatusPanicked:  1,
	})
	if merged["completed"] != 9 || merged["panicked"] != 1 {
		t.Fatalf("unexpected merge: %+v", merged)
	}
}

func TestFormatTime(t *testing.T) {
	if got := FormatTime(time.Time{}); got != "" {
		t.Fatalf("expected empty string for zero time, got %q", got)
	}
	ts := time.Date(2026, time.January, 2, 15, 4, 5, 60_000_000, time.FixedZone("CET", 3600))
	if got := FormatTime(ts); got != "2026-01-02T14:04:05.060Z" {
		t.Fatalf("unexpected formatted time: %q", got)
	}
}
