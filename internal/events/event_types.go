package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketsListed         EventType = "tickets_listed"
	EventTicketFetched         EventType = "ticket_fetched"
	EventConversationAssembled EventType = "conversation_assembled"
	EventNoteAdded             EventType = "note_added"
	EventNoteFailed            EventType = "note_failed"
	EventOwnersLoaded          EventType = "owners_loaded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	ClientID  string      `json:"client_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketsListedPayload payload.
type TicketsListedPayload struct {
	Searched  bool `json:"searched"`
	Criteria  int  `json:"criteria"`
	Returned  int  `json:"returned"`
	HasFilter bool `json:"has_filter"`
}

// TicketFetchedPayload payload.
type TicketFetchedPayload struct {
	Associations map[string]int `json:"associations"`
}

// ConversationAssembledPayload payload.
type ConversationAssembledPayload struct {
	Linked  int `json:"linked"`
	Fetched int `json:"fetched"`
	Dropped int `json:"dropped"`
}

// NoteAddedPayload payload.
type NoteAddedPayload struct {
	NoteID      string `json:"note_id,omitempty"`
	BodyPreview string `json:"body_preview"`
	Error       string `json:"error,omitempty"`
}

// OwnersLoadedPayload payload.
type OwnersLoadedPayload struct {
	Count int `json:"count"`
}
