package models

import "time"

// AuditMessage is published to the queue whenever a supervisor requests or
// regenerates a student's history.
type AuditMessage struct {
	StudentID   string    `json:"student_id"`
	Email       string    `json:"email"`
	ServiceName string    `json:"service_name"`
	Action      string    `json:"action"`
	Supervisor  string    `json:"supervisor,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Audit action constants
const (
	ActionHistoryGenerated = "history_generated"
	ActionHistoryExtended  = "history_extended"
	ActionHistoryServed    = "history_served"
	ActionSessionsServed   = "sessions_served"
	ActionSettingsUpdated  = "settings_updated"
)

// Service name constants
const (
	ServiceActivityHandler = "tracker.handler.activity"
	ServiceSessionsHandler = "tracker.handler.sessions"
	ServiceSettingsHandler = "tracker.handler.settings"
)
