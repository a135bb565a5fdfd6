package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-tools/internal/domain"
	apperrors "github.com/spec-kit/ticket-tools/pkg/util/errorutil"
)

// HashSecret hashes a client secret with the given cost. It backs the
// hashsecret command used to fill AUTH_CLIENTS.
func HashSecret(secret string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CompareSecret verifies a secret against its hashed value.
func CompareSecret(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// ClientRegistry authenticates tool clients against configured secret hashes.
type ClientRegistry struct {
	hashes   map[string]string
	readOnly map[string]struct{}
	tokens   *TokenManager
}

// NewClientRegistry builds a registry. hashes maps client_id to bcrypt hash.
func NewClientRegistry(hashes map[string]string, readOnly []string, tokens *TokenManager) *ClientRegistry {
	ro := make(map[string]struct{}, len(readOnly))
	for _, id := range readOnly {
		ro[id] = struct{}{}
	}
	return &ClientRegistry{hashes: hashes, readOnly: ro, tokens: tokens}
}

// Authenticate checks credentials and issues an access token.
func (r *ClientRegistry) Authenticate(clientID, secret string) (*domain.Token, error) {
	hash, ok := r.hashes[clientID]
	if !ok || clientID == "" {
		return nil, apperrors.NewUnauthorized("invalid client credentials")
	}
	if err := CompareSecret(hash, secret); err != nil {
		return nil, apperrors.NewUnauthorized("invalid client credentials")
	}

	client := domain.Client{ID: clientID, Scopes: []domain.Scope{domain.ScopeRead}}
	if _, denied := r.readOnly[clientID]; !denied {
		client.Scopes = append(client.Scopes, domain.ScopeWrite)
	}
	token, err := r.tokens.GenerateToken(client)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return token, nil
}
