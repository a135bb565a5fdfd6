package domain

import "time"

// ToolEvent is an immutable audit entry for one tool operation.
type ToolEvent struct {
	ID        string
	Type      string
	TicketID  *string
	ClientID  *string
	Outcome   string
	Payload   map[string]any
	CreatedAt time.Time
}

// Tool event outcomes.
const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)
