package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tools/internal/api/dto"
	"github.com/spec-kit/ticket-tools/internal/domain"
	"github.com/spec-kit/ticket-tools/internal/repository"
	apperrors "github.com/spec-kit/ticket-tools/pkg/util/errorutil"
)

// AuditLister reads the tool audit trail.
type AuditLister interface {
	List(ctx context.Context, filter repository.ToolEventFilter) ([]domain.ToolEvent, error)
}

// AuditHandler exposes recorded tool events.
type AuditHandler struct {
	audit AuditLister
}

// NewAuditHandler constructs handler.
func NewAuditHandler(audit AuditLister) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List GET /tools/audit.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	filter, err := parseAuditFilter(c)
	if err != nil {
		return err
	}
	events, err := h.audit.List(c.UserContext(), filter)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewToolEvents(events)})
}

func parseAuditFilter(c *fiber.Ctx) (repository.ToolEventFilter, error) {
	filter := repository.ToolEventFilter{
		Limit:  parseInt(c.Query("limit"), 50),
		Offset: parseInt(c.Query("offset"), 0),
	}
	if v := c.Query("ticket_id"); v != "" {
		filter.TicketID = &v
	}
	if v := c.Query("client_id"); v != "" {
		filter.ClientID = &v
	}
	if v := c.Query("type"); v != "" {
		filter.Type = &v
	}
	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, apperrors.NewValidationError("since must be RFC3339", map[string]any{"since": v})
		}
		filter.Since = &since
	}
	return filter, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
