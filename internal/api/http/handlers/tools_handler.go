package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tools/internal/api/dto"
	"github.com/spec-kit/ticket-tools/internal/domain"
	apperrors "github.com/spec-kit/ticket-tools/pkg/util/errorutil"
)

// TicketTools is the ticket side of the tool surface.
type TicketTools interface {
	ListTickets(ctx context.Context, criteria domain.FilterCriteria) ([]domain.Ticket, error)
	GetTicketDetails(ctx context.Context, ticketID string) (*domain.Ticket, error)
	GetTicketEmails(ctx context.Context, ticketID string) ([]domain.ConversationMessage, error)
	CreateNote(ctx context.Context, ticketID, body string) (string, error)
	TestConnection(ctx context.Context) bool
}

// OwnerLookup is the directory side of the tool surface.
type OwnerLookup interface {
	ListOwners(ctx context.Context) []domain.Owner
	FindOwnersByName(ctx context.Context, term string) []domain.OwnerMatch
}

// ToolsHandler exposes the ticket tools over HTTP.
type ToolsHandler struct {
	tickets TicketTools
	owners  OwnerLookup
}

// NewToolsHandler constructs handler.
func NewToolsHandler(tickets TicketTools, owners OwnerLookup) *ToolsHandler {
	return &ToolsHandler{tickets: tickets, owners: owners}
}

// TestConnection GET /tools/connection.
func (h *ToolsHandler) TestConnection(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.ConnectionResponse{Connected: h.tickets.TestConnection(c.UserContext())}})
}

// ListTickets GET /tools/tickets.
func (h *ToolsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListTickets(c.UserContext(), parseTicketListQuery(c).Criteria())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// GetTicket GET /tools/tickets/:id.
func (h *ToolsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetTicketDetails(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// GetTicketEmails GET /tools/tickets/:id/emails.
func (h *ToolsHandler) GetTicketEmails(c *fiber.Ctx) error {
	messages, err := h.tickets.GetTicketEmails(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewConversation(messages)})
}

// AddNote POST /tools/tickets/:id/notes. Vendor failures are reported as
// success=false rather than an error status.
func (h *ToolsHandler) AddNote(c *fiber.Ctx) error {
	var req dto.AddNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperrors.NewValidationError("body required", nil)
	}
	noteID, err := h.tickets.CreateNote(c.UserContext(), c.Params("id"), req.Body)
	if err != nil {
		return c.JSON(fiber.Map{"data": dto.AddNoteResponse{Success: false}})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AddNoteResponse{Success: true, NoteID: noteID}})
}

// ListOwners GET /tools/owners.
func (h *ToolsHandler) ListOwners(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.NewOwners(h.owners.ListOwners(c.UserContext()))})
}

// FindOwners GET /tools/owners/search?q=.
func (h *ToolsHandler) FindOwners(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return apperrors.NewValidationError("q required", nil)
	}
	return c.JSON(fiber.Map{"data": dto.NewOwnerMatches(h.owners.FindOwnersByName(c.UserContext(), term))})
}

func parseTicketListQuery(c *fiber.Ctx) dto.TicketListQuery {
	return dto.TicketListQuery{
		Groups:     splitCSV(c.Query("groups")),
		Statuses:   splitCSV(c.Query("statuses")),
		Priorities: splitCSV(c.Query("priorities")),
		Owners:     splitCSV(c.Query("owners")),
		Query:      c.Query("q"),
	}
}

func splitCSV(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
