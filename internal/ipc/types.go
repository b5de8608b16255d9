package ipc

import "conveyor/internal/api"

// PingRequest checks daemon liveness.
type PingRequest struct{}

// PingResponse confirms the daemon is reachable.
type PingResponse struct {
	Pong bool `json:"pong"`
	PID  int  `json:"pid"`
}

// StatusView mirrors the shared status DTO for IPC callers.
type StatusView = api.StatusView

// OutcomeView mirrors the shared outcome DTO for IPC callers.
type OutcomeView = api.OutcomeView

// ProbeView mirrors the shared probe DTO for IPC callers.
type ProbeView = api.ProbeView

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse carries the full daemon status snapshot.
type StatusResponse struct {
	Status StatusView `json:"status"`
}

// SubmitRequest enqueues one work item by kind and payload.
type SubmitRequest struct {
	Kind    string `json:"kind"`
	Payload string `json:"payload"`
}

// SubmitResponse reports the identifier assigned to the enqueued item.
type SubmitResponse struct {
	ItemID string `json:"item_id"`
}

// HistoryRequest fetches recent work outcomes.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryResponse contains recent outcomes plus aggregate counts by status.
type HistoryResponse struct {
	Outcomes []OutcomeView  `json:"outcomes"`
	Stats    map[string]int `json:"stats"`
}

// HealthRequest fetches the latest health probe results.
type HealthRequest struct{}

// HealthResponse contains per-target probe results.
type HealthResponse struct {
	Targets []ProbeView `json:"targets"`
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
