package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// OutcomeView describes a finished work item in a transport-friendly format.
type OutcomeView struct {
	ID           int64  `json:"id"`
	ItemID       string `json:"itemId"`
	Kind         string `json:"kind"`
	Worker       string `json:"worker"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	DurationMS   int64  `json:"durationMs"`
	FinishedAt   string `json:"finishedAt,omitempty"`
}

// ProbeView captures the latest observed state of one health target.
type ProbeView struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Status      string `json:"status"`
	StatusCode  int    `json:"statusCode,omitempty"`
	LatencyMS   int64  `json:"latencyMs"`
	Error       string `json:"error,omitempty"`
	LastChecked string `json:"lastChecked,omitempty"`
}

// PoolView summarizes the worker pool counters.
type PoolView struct {
	State     string `json:"state"`
	Consumers int    `json:"consumers"`
	InFlight  int    `json:"inFlight"`
	Processed uint64 `json:"processed"`
	Failed    uint64 `json:"failed"`
}

// WatcherView summarizes filesystem watcher counters.
type WatcherView struct {
	EventsSeen     uint64 `json:"eventsSeen"`
	ItemsEnqueued  uint64 `json:"itemsEnqueued"`
	PendingSettles int    `json:"pendingSettles"`
}

// StatusView aggregates daemon runtime information for API consumers.
type StatusView struct {
	Running       bool         `json:"running"`
	PID           int          `json:"pid"`
	StartedAt     string       `json:"startedAt,omitempty"`
	UptimeMS      int64        `json:"uptimeMs"`
	QueueDepth    int          `json:"queueDepth"`
	QueueAccepted uint64       `json:"queueAccepted"`
	Pool          PoolView     `json:"pool"`
	Watcher       *WatcherView `json:"watcher,omitempty"`
	Health        []ProbeView  `json:"health,omitempty"`
	JournalPath   string       `json:"journalPath"`
	LockPath      string       `json:"lockPath"`
	SocketPath    string       `json:"socketPath"`
	LogPath       string       `json:"logPath"`
}
