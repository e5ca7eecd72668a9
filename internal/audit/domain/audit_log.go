package domain

import "time"

// AuditLog represents one recorded application event (auth flows, captioning,
// uploads). ActorID is empty for unauthenticated events.
type AuditLog struct {
	ID        string
	ActorID   string
	Action    string
	Outcome   string
	Metadata  string // JSON object
	CreatedAt time.Time
}

// Outcomes recorded on audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
