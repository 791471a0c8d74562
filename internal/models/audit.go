package models

import "time"

// Audit event types understood by the back-office audit trail.
const (
	EventSuccess = "success"
	EventWarning = "warning"
	EventError   = "error"
	EventInfo    = "info"
)

// AuditEvent is one entry in the append-only audit feed.
type AuditEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Meta      map[string]any `json:"meta"`
}

// EventTypeForRisk maps a risk level to the audit event type shown for it.
func EventTypeForRisk(risk string) string {
	switch risk {
	case RiskHigh:
		return EventError
	case RiskMedium:
		return EventWarning
	default:
		return EventSuccess
	}
}
