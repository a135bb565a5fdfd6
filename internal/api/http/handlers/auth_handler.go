package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tools/internal/api/dto"
	"github.com/spec-kit/ticket-tools/internal/domain"
	apperrors "github.com/spec-kit/ticket-tools/pkg/util/errorutil"
)

// Authenticator exchanges client credentials for a token.
type Authenticator interface {
	Authenticate(clientID, secret string) (*domain.Token, error)
}

// AuthHandler issues access tokens.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Token POST /auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ClientID == "" || req.ClientSecret == "" {
		return apperrors.NewValidationError("client_id and client_secret required", nil)
	}
	token, err := h.auth.Authenticate(req.ClientID, req.ClientSecret)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTokenResponse(token)})
}
