package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Action    string    `json:"action"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

type AuditEvent string

const (
	EventUserRegistered       AuditEvent = "user_registered"
	EventRegistrationRejected AuditEvent = "registration_rejected"
	EventUserAccessed         AuditEvent = "user_accessed"
	EventAuthFailed           AuditEvent = "auth_failed"
)
