package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tools/internal/domain"
	"github.com/spec-kit/ticket-tools/pkg/ctxutil"
)

const clientKey = "auth_client"

// AuthMiddleware validates bearer tokens.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes and stores the client
// both in fiber locals and in the user context for event attribution.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	client, err := m.tokens.ParseBearer(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}

	c.Locals(clientKey, client)
	c.SetUserContext(WithClient(ctxutil.WithClientID(c.UserContext(), client.ID), client))
	return c.Next()
}

// ClientFromContext retrieves the authenticated client.
func ClientFromContext(c *fiber.Ctx) (*domain.Client, bool) {
	val := c.Locals(clientKey)
	if val == nil {
		return nil, false
	}
	client, ok := val.(*domain.Client)
	return client, ok
}
