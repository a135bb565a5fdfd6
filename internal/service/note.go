package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tools/internal/events"
	"github.com/spec-kit/ticket-tools/internal/hubspot"
)

// Note record property names.
const (
	propNoteBody      = "hs_note_body"
	propNoteTimestamp = "hs_timestamp"
)

const notePreviewLen = 120

var errEmptyNote = errors.New("ticket id and body are required")

// AddNoteToTicket creates a note linked to the ticket and reports success.
// It never returns an error; failures are logged and yield false.
func (s *TicketService) AddNoteToTicket(ctx context.Context, ticketID, body string) bool {
	_, err := s.CreateNote(ctx, ticketID, body)
	return err == nil
}

// CreateNote creates a note linked to the ticket and returns its id.
func (s *TicketService) CreateNote(ctx context.Context, ticketID, body string) (string, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" || strings.TrimSpace(body) == "" {
		s.noteFailed(ctx, ticketID, body, errEmptyNote)
		return "", errEmptyNote
	}

	props := map[string]string{
		propNoteBody:      body,
		propNoteTimestamp: strconv.FormatInt(s.now().UnixMilli(), 10),
	}
	assoc := []hubspot.AssociationSpec{{
		ToID:     ticketID,
		Category: "HUBSPOT_DEFINED",
		TypeID:   hubspot.NoteToTicketAssociation,
	}}

	rec, err := s.records.CreateRecord(ctx, hubspot.ObjectNotes, props, assoc)
	if err != nil {
		s.noteFailed(ctx, ticketID, body, err)
		return "", err
	}

	s.logger.Info("note added", zap.String("ticket_id", ticketID), zap.String("note_id", rec.ID))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventNoteAdded,
		TicketID: ticketID,
		Payload: events.NoteAddedPayload{
			NoteID:      rec.ID,
			BodyPreview: stringPreview(body, notePreviewLen),
		},
	})
	return rec.ID, nil
}

func (s *TicketService) noteFailed(ctx context.Context, ticketID, body string, err error) {
	s.logger.Warn("add note failed", zap.String("ticket_id", ticketID), zap.Error(err))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventNoteFailed,
		TicketID: ticketID,
		Payload: events.NoteAddedPayload{
			BodyPreview: stringPreview(body, notePreviewLen),
			Error:       err.Error(),
		},
	})
}
