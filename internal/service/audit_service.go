package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tools/internal/domain"
	"github.com/spec-kit/ticket-tools/internal/events"
	"github.com/spec-kit/ticket-tools/internal/repository"
)

// StreamPublisher appends events to an external stream.
type StreamPublisher interface {
	PublishEvent(ctx context.Context, eventType string, event any) error
}

// AuditService records every tool event: a structured log line always, a
// database row when a repository is configured and a stream entry when a
// publisher is configured.
type AuditService struct {
	dispatcher events.Dispatcher
	repo       repository.ToolEventRepository
	stream     StreamPublisher
	logger     *zap.Logger
}

// AuditDependencies bundles collaborators for the audit service.
type AuditDependencies struct {
	Dispatcher events.Dispatcher
	Repo       repository.ToolEventRepository
	Stream     StreamPublisher
	Logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(deps AuditDependencies) *AuditService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: deps.Dispatcher,
		repo:       deps.Repo,
		stream:     deps.Stream,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.SubscribeAll(a.handleEvent)
}

// List returns persisted events, newest first. Without a repository it
// returns an empty slice.
func (a *AuditService) List(ctx context.Context, filter repository.ToolEventFilter) ([]domain.ToolEvent, error) {
	if a.repo == nil {
		return []domain.ToolEvent{}, nil
	}
	out, err := a.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.ToolEvent{}
	}
	return out, nil
}

func (a *AuditService) handleEvent(ctx context.Context, event events.Event) error {
	record := toToolEvent(event)
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("ticket_id", event.TicketID),
		zap.String("client_id", event.ClientID),
		zap.String("outcome", record.Outcome),
		zap.Any("payload", event.Payload))

	// Failures below are reported to the dispatcher, which logs and moves on.
	if a.stream != nil {
		if err := a.stream.PublishEvent(ctx, string(event.Type), event); err != nil {
			a.logger.Warn("audit stream publish failed", zap.String("event_id", event.ID), zap.Error(err))
		}
	}
	if a.repo != nil {
		return a.repo.Create(ctx, &record)
	}
	return nil
}

func toToolEvent(event events.Event) domain.ToolEvent {
	record := domain.ToolEvent{
		ID:        event.ID,
		Type:      string(event.Type),
		Outcome:   outcomeFor(event),
		Payload:   payloadMap(event.Payload),
		CreatedAt: event.Timestamp.UTC(),
	}
	if event.TicketID != "" {
		id := event.TicketID
		record.TicketID = &id
	}
	if event.ClientID != "" {
		id := event.ClientID
		record.ClientID = &id
	}
	return record
}

func outcomeFor(event events.Event) string {
	switch p := event.Payload.(type) {
	case events.NoteAddedPayload:
		if event.Type == events.EventNoteFailed {
			return domain.OutcomeFailed
		}
	case events.ConversationAssembledPayload:
		if p.Dropped > 0 {
			return domain.OutcomePartial
		}
	}
	return domain.OutcomeOK
}

// payloadMap flattens typed payloads through their JSON form.
func payloadMap(payload any) map[string]any {
	if payload == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
