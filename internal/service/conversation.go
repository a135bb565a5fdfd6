package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/ticket-tools/internal/domain"
	"github.com/spec-kit/ticket-tools/internal/events"
	"github.com/spec-kit/ticket-tools/internal/hubspot"
	"github.com/spec-kit/ticket-tools/internal/textnorm"
	apperrors "github.com/spec-kit/ticket-tools/pkg/util/errorutil"
)

var ticketIDOnly = []string{domain.PropObjectID}

// GetTicketEmails returns the ticket's linked emails as plain-text messages
// ordered oldest first. Messages that cannot be fetched are dropped; failure
// to load the ticket itself propagates.
func (s *TicketService) GetTicketEmails(ctx context.Context, ticketID string) ([]domain.ConversationMessage, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, apperrors.NewValidationError("ticket_id required", nil)
	}
	// Only the email links are needed, not the default property set.
	rec, err := s.records.GetRecord(ctx, hubspot.ObjectTickets, ticketID, ticketIDOnly, []string{domain.AssocEmails})
	if err != nil {
		return nil, s.mapReadError(err, ticketID)
	}

	ids := rec.Associations[domain.AssocEmails]
	if len(ids) == 0 {
		return []domain.ConversationMessage{}, nil
	}

	slots := make([]*domain.ConversationMessage, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			msg, err := s.fetchMessage(gctx, id)
			if err != nil {
				s.logger.Warn("dropping conversation message",
					zap.String("ticket_id", ticketID),
					zap.String("email_id", id),
					zap.Error(err))
				return nil
			}
			slots[i] = msg
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	messages := make([]domain.ConversationMessage, 0, len(slots))
	for _, m := range slots {
		if m != nil {
			messages = append(messages, *m)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return sortKey(messages[i]).Before(sortKey(messages[j]))
	})

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventConversationAssembled,
		TicketID: ticketID,
		Payload: events.ConversationAssembledPayload{
			Linked:  len(ids),
			Fetched: len(messages),
			Dropped: len(ids) - len(messages),
		},
	})
	return messages, nil
}

func (s *TicketService) fetchMessage(ctx context.Context, id string) (msg *domain.ConversationMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			msg, err = nil, fmt.Errorf("normalize message %s: %v", id, r)
		}
	}()

	rec, err := s.records.GetRecord(ctx, hubspot.ObjectEmails, id, domain.EmailProperties, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", id, err)
	}
	return normalizeMessage(rec, s.now), nil
}

func normalizeMessage(rec *hubspot.Record, now func() time.Time) *domain.ConversationMessage {
	props := rec.Properties
	ts, fallback := textnorm.ResolveTimestamp(props, rec.CreatedAt, now)
	return &domain.ConversationMessage{
		ID:                rec.ID,
		Subject:           props[domain.PropEmailSubject],
		From:              props[domain.PropEmailFrom],
		To:                props[domain.PropEmailTo],
		Body:              textnorm.NormalizeBody(props[domain.PropEmailHTML], props[domain.PropEmailText]),
		CreatedAt:         ts,
		TimestampFallback: fallback,
	}
}

// sortKey orders unresolved timestamps first without altering CreatedAt.
func sortKey(m domain.ConversationMessage) time.Time {
	if m.TimestampFallback {
		return time.Unix(0, 0).UTC()
	}
	return m.CreatedAt
}
