package trace

import "time"

// Outcome classifies how a dispatch ended.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeRenderError Outcome = "render_error"
	OutcomeRateLimited Outcome = "rate_limited"
)

// Entry records a single dispatched call.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	EndpointID string    `json:"endpoint_id,omitempty"`
	Scenario   string    `json:"scenario,omitempty"`
	Outcome    Outcome   `json:"outcome"`
	Status     int       `json:"status,omitempty"`
	DelayMs    int64     `json:"delay_ms"`
}
