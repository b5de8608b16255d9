package api

import (
	"time"

	"conveyor/internal/daemon"
	"conveyor/internal/health"
	"conveyor/internal/journal"
)

// FromOutcome converts a journal record to its API representation.
func FromOutcome(outcome journal.Outcome) OutcomeView {
	return OutcomeView{
		ID:           outcome.ID,
		ItemID:       outcome.ItemID,
		Kind:         outcome.Kind,
		Worker:       outcome.Worker,
		Status:       string(outcome.Status),
		ErrorMessage: outcome.ErrorMessage,
		DurationMS:   outcome.Duration.Milliseconds(),
		FinishedAt:   FormatTime(outcome.FinishedAt),
	}
}

// FromOutcomes converts a slice of journal records into API DTOs.
func FromOutcomes(outcomes []journal.Outcome) []OutcomeView {
	if len(outcomes) == 0 {
		return nil
	}
	out := make([]OutcomeView, 0, len(outcomes))
	for _, outcome := range outcomes {
		out = append(out, FromOutcome(outcome))
	}
	return out
}

// FromTargetStatus converts a health probe result to its API representation.
func FromTargetStatus(status health.TargetStatus) ProbeView {
	return ProbeView{
		Name:        status.Name,
		URL:         status.URL,
		Status:      string(status.Status),
		StatusCode:  status.StatusCode,
		LatencyMS:   status.Latency.Milliseconds(),
		Error:       status.Error,
		LastChecked: FormatTime(status.LastChecked),
	}
}

// FromTargetStatuses converts a slice of probe results into API DTOs.
func FromTargetStatuses(statuses []health.TargetStatus) []ProbeView {
	if len(statuses) == 0 {
		return nil
	}
	out := make([]ProbeView, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, FromTargetStatus(status))
	}
	return out
}

// FromProbeRecord converts a persisted probe observation to its API
// representation. Persisted records are always decided, so the status is
// either healthy or unhealthy.
func FromProbeRecord(record journal.ProbeRecord) ProbeView {
	status := health.StatusUnhealthy
	if record.Healthy {
		status = health.StatusHealthy
	}
	return ProbeView{
		Name:        record.Target,
		URL:         record.URL,
		Status:      string(status),
		StatusCode:  record.StatusCode,
		LatencyMS:   record.Elapsed.Milliseconds(),
		Error:       record.Detail,
		LastChecked: FormatTime(record.CheckedAt),
	}
}

// FromProbeRecords converts a slice of persisted probe observations.
func FromProbeRecords(records []journal.ProbeRecord) []ProbeView {
	if len(records) == 0 {
		return nil
	}
	out := make([]ProbeView, 0, len(records))
	for _, record := range records {
		out = append(out, FromProbeRecord(record))
	}
	return out
}

// FromStatus converts a daemon status snapshot to its API representation.
func FromStatus(status daemon.Status) StatusView {
	view := StatusView{
		Running:       status.Running,
		PID:           status.PID,
		StartedAt:     FormatTime(status.StartedAt),
		UptimeMS:      status.Uptime.Milliseconds(),
		QueueDepth:    status.QueueDepth,
		QueueAccepted: status.QueueAccepted,
		Health:        FromTargetStatuses(status.Health),
		JournalPath:   status.JournalPath,
		LockPath:      status.LockPath,
		SocketPath:    status.SocketPath,
		LogPath:       status.LogPath,
		Pool: PoolView{
			State:     string(status.Pool.State),
			Consumers: status.Pool.Consumers,
			InFlight:  status.Pool.InFlight,
			Processed: status.Pool.Processed,
			Failed:    status.Pool.Failed,
		},
	}
	if status.Watcher != nil {
		view.Watcher = &WatcherView{
			EventsSeen:     status.Watcher.EventsSeen,
			ItemsEnqueued:  status.Watcher.ItemsEnqueued,
			PendingSettles: status.Watcher.PendingSettles,
		}
	}
	return view
}

// MergeOutcomeStats produces a string-keyed representation of outcome stats.
func MergeOutcomeStats(stats map[journal.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
