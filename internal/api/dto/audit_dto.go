package dto

import (
	"time"

	"github.com/spec-kit/ticket-tools/internal/domain"
)

// ToolEventResponse is one audit trail entry.
type ToolEventResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	TicketID  *string        `json:"ticket_id"`
	ClientID  *string        `json:"client_id"`
	Outcome   string         `json:"outcome"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewToolEvents maps audit entries and never returns nil.
func NewToolEvents(events []domain.ToolEvent) []ToolEventResponse {
	items := make([]ToolEventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, ToolEventResponse{
			ID:        e.ID,
			Type:      e.Type,
			TicketID:  e.TicketID,
			ClientID:  e.ClientID,
			Outcome:   e.Outcome,
			Payload:   e.Payload,
			CreatedAt: e.CreatedAt,
		})
	}
	return items
}
