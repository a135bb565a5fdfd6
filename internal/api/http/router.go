package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tools/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tools/internal/auth"
	"github.com/spec-kit/ticket-tools/internal/domain"
	"github.com/spec-kit/ticket-tools/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tools          *handlers.ToolsHandler
	Audit          *handlers.AuditHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/token", cfg.Auth.Token)

	tools := app.Group("/tools", cfg.AuthMiddleware.Handle)
	read := auth.RequireScope(domain.ScopeRead)
	write := auth.RequireScope(domain.ScopeWrite)

	tools.Get("/connection", read, cfg.Tools.TestConnection)
	tools.Get("/tickets", read, cfg.Tools.ListTickets)
	tools.Get("/tickets/:id", read, cfg.Tools.GetTicket)
	tools.Get("/tickets/:id/emails", read, cfg.Tools.GetTicketEmails)
	tools.Post("/tickets/:id/notes", write, cfg.Tools.AddNote)
	tools.Get("/owners", read, cfg.Tools.ListOwners)
	tools.Get("/owners/search", read, cfg.Tools.FindOwners)
	tools.Get("/audit", read, cfg.Audit.List)
	tools.Get("/metrics", read, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": cfg.Metrics.Snapshot()})
	})
}
