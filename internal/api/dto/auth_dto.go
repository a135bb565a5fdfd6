package dto

import (
	"time"

	"github.com/spec-kit/ticket-tools/internal/domain"
)

// TokenRequest exchanges client credentials for an access token.
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse is returned by the token endpoint.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewTokenResponse maps an issued token.
func NewTokenResponse(t *domain.Token) TokenResponse {
	return TokenResponse{AccessToken: t.AccessToken, TokenType: "Bearer", ExpiresAt: t.ExpiresAt}
}
