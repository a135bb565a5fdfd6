package dto

import (
	"time"

	"github.com/spec-kit/ticket-tools/internal/domain"
)

// TicketListQuery captures list filters. Query-string values are comma separated.
type TicketListQuery struct {
	Groups     []string `json:"groups,omitempty"`
	Statuses   []string `json:"statuses,omitempty"`
	Priorities []string `json:"priorities,omitempty"`
	Owners     []string `json:"owners,omitempty"`
	Query      string   `json:"query,omitempty"`
}

// Criteria converts the query to domain filter criteria.
func (q TicketListQuery) Criteria() domain.FilterCriteria {
	return domain.FilterCriteria{
		Groups:     q.Groups,
		Statuses:   q.Statuses,
		Priorities: q.Priorities,
		Owners:     q.Owners,
		Query:      q.Query,
	}
}

// TicketSummary response.
type TicketSummary struct {
	ID         string             `json:"id"`
	Properties map[string]*string `json:"properties"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID           string              `json:"id"`
	Properties   map[string]*string  `json:"properties"`
	Associations map[string][]string `json:"associations"`
}

// ConversationMessageResponse represents one thread message.
type ConversationMessageResponse struct {
	ID        string    `json:"id"`
	Subject   *string   `json:"subject"`
	From      *string   `json:"from"`
	To        *string   `json:"to"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// AddNoteRequest payload.
type AddNoteRequest struct {
	Body string `json:"body"`
}

// AddNoteResponse reports the outcome of a note write.
type AddNoteResponse struct {
	Success bool   `json:"success"`
	NoteID  string `json:"note_id,omitempty"`
}

// ConnectionResponse reports vendor reachability.
type ConnectionResponse struct {
	Connected bool `json:"connected"`
}

// NewTicketSummary maps a ticket for list responses.
func NewTicketSummary(t domain.Ticket) TicketSummary {
	props := t.Properties
	if props == nil {
		props = map[string]*string{}
	}
	return TicketSummary{ID: t.ID, Properties: props}
}

// NewTicketSummaries maps a ticket list and never returns nil.
func NewTicketSummaries(tickets []domain.Ticket) []TicketSummary {
	items := make([]TicketSummary, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, NewTicketSummary(t))
	}
	return items
}

// NewTicketDetail maps a ticket fetched with associations.
func NewTicketDetail(t *domain.Ticket) TicketDetailResponse {
	summary := NewTicketSummary(*t)
	assocs := t.Associations
	if assocs == nil {
		assocs = map[string][]string{}
	}
	return TicketDetailResponse{ID: summary.ID, Properties: summary.Properties, Associations: assocs}
}

// NewConversation maps assembled messages and never returns nil.
func NewConversation(messages []domain.ConversationMessage) []ConversationMessageResponse {
	items := make([]ConversationMessageResponse, 0, len(messages))
	for _, m := range messages {
		items = append(items, ConversationMessageResponse{
			ID:        m.ID,
			Subject:   m.Subject,
			From:      m.From,
			To:        m.To,
			Body:      m.Body,
			CreatedAt: m.CreatedAt,
		})
	}
	return items
}
