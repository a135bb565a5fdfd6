package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tools/internal/domain"
	"github.com/spec-kit/ticket-tools/internal/events"
	"github.com/spec-kit/ticket-tools/internal/hubspot"
	apperrors "github.com/spec-kit/ticket-tools/pkg/util/errorutil"
)

// TicketService coordinates ticket reads, conversation assembly and notes.
type TicketService struct {
	records       RecordStore
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	groupProperty string
	concurrency   int
	now           func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Records       RecordStore
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	GroupProperty string
	// FetchConcurrency bounds the message fan-out; values below 1 mean sequential.
	FetchConcurrency int
	Clock            func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		records:       deps.Records,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
		groupProperty: deps.GroupProperty,
		concurrency:   deps.FetchConcurrency,
		now:           deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.groupProperty == "" {
		s.groupProperty = domain.PropPipeline
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ListTickets returns tickets matching criteria. Without criteria it uses the
// plain listing call instead of search. Upstream failures propagate.
func (s *TicketService) ListTickets(ctx context.Context, criteria domain.FilterCriteria) ([]domain.Ticket, error) {
	properties := domain.TicketProperties(s.groupProperty)
	query := BuildSelection(criteria, s.groupProperty)

	var (
		page *hubspot.Page
		err  error
	)
	if len(query) == 0 {
		page, err = s.records.ListRecords(ctx, hubspot.ObjectTickets, PageSize, properties)
	} else {
		page, err = s.records.SearchRecords(ctx, hubspot.SearchRequest{
			ObjectType:   hubspot.ObjectTickets,
			FilterGroups: toFilterGroups(query),
			Properties:   properties,
			Limit:        PageSize,
		})
	}
	if err != nil {
		return nil, apperrors.NewUpstreamError(err)
	}

	tickets := make([]domain.Ticket, 0, len(page.Results))
	for _, rec := range page.Results {
		tickets = append(tickets, domain.Ticket{ID: rec.ID, Properties: rec.Properties})
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type: events.EventTicketsListed,
		Payload: events.TicketsListedPayload{
			Searched:  len(query) > 0,
			Criteria:  len(query),
			Returned:  len(tickets),
			HasFilter: len(query) > 0,
		},
	})
	return tickets, nil
}

// GetTicketDetails fetches one ticket with its full property set and the ids
// of linked emails, notes, contacts and companies.
func (s *TicketService) GetTicketDetails(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, apperrors.NewValidationError("ticket_id required", nil)
	}
	rec, err := s.records.GetRecord(ctx, hubspot.ObjectTickets, ticketID, domain.TicketProperties(s.groupProperty), domain.DetailAssociations)
	if err != nil {
		return nil, s.mapReadError(err, ticketID)
	}

	ticket := &domain.Ticket{
		ID:           rec.ID,
		Properties:   rec.Properties,
		Associations: map[string][]string{},
	}
	counts := make(map[string]int, len(domain.DetailAssociations))
	for _, kind := range domain.DetailAssociations {
		ids := rec.Associations[kind]
		if ids == nil {
			ids = []string{}
		}
		ticket.Associations[kind] = ids
		counts[kind] = len(ids)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketFetched,
		TicketID: ticket.ID,
		Payload:  events.TicketFetchedPayload{Associations: counts},
	})
	return ticket, nil
}

// TestConnection reports whether the vendor API accepts the configured
// credentials. It never returns an error.
func (s *TicketService) TestConnection(ctx context.Context) bool {
	if _, err := s.records.ListRecords(ctx, hubspot.ObjectTickets, 1, nil); err != nil {
		s.logger.Warn("connection test failed", zap.Error(err))
		return false
	}
	return true
}

func (s *TicketService) mapReadError(err error, ticketID string) error {
	if errors.Is(err, hubspot.ErrNotFound) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return apperrors.NewUpstreamError(err)
}
