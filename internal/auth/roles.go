package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tools/internal/domain"
	apperrors "github.com/spec-kit/ticket-tools/pkg/util/errorutil"
)

// RequireScope ensures the authenticated client holds scope.
func RequireScope(scope domain.Scope) fiber.Handler {
	return func(c *fiber.Ctx) error {
		client, ok := ClientFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !client.HasScope(scope) {
			return apperrors.NewForbidden("missing scope " + string(scope))
		}
		return c.Next()
	}
}
