package health

import "time"

// Status classifies one target's most recent probe.
type Status string

const (
	// StatusUnknown means the target has not been probed yet.
	StatusUnknown Status = "unknown"
	StatusHealthy Status = "healthy"
	// StatusUnhealthy covers connection failures, timeouts, and bad HTTP
	// status codes alike; Error carries the distinction.
	StatusUnhealthy Status = "unhealthy"
)

// Target is one endpoint to probe, with its resolved per-probe timeout.
type Target struct {
	Name    string
	URL     string
	Timeout time.Duration
}

// TargetStatus is the recorded result of the latest probe of one target.
type TargetStatus struct {
	Name        string
	URL         string
	Status      Status
	StatusCode  int
	Latency     time.Duration
	Error       string
	LastChecked time.Time
}
