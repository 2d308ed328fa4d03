package domain

import "time"

// Analytics event names emitted by the client.
const (
	EventPageView     = "page_view"
	EventClick        = "click"
	EventFormSubmit   = "form_submit"
	EventScrollDepth  = "scroll_depth"
	EventSessionStart = "session_start"
	EventSessionEnd   = "session_end"
	EventAPICall      = "api_call"
)

// AnalyticsEvent is one telemetry record as sent to the ingest endpoint.
type AnalyticsEvent struct {
	Name       string         `json:"event"`
	SessionID  string         `json:"session_id"`
	Page       string         `json:"page,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Properties map[string]any `json:"properties,omitempty"`
}
