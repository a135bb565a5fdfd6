package auth

import (
	"context"
	"strings"

	"github.com/spec-kit/ticket-tools/internal/domain"
	apperrors "github.com/spec-kit/ticket-tools/pkg/util/errorutil"
)

type clientCtxKey struct{}

// WithClient stores an authenticated client on ctx.
func WithClient(ctx context.Context, client *domain.Client) context.Context {
	return context.WithValue(ctx, clientCtxKey{}, client)
}

// ClientFromCtx returns the client stored by WithClient.
func ClientFromCtx(ctx context.Context) (*domain.Client, bool) {
	client, ok := ctx.Value(clientCtxKey{}).(*domain.Client)
	return client, ok && client != nil
}

// ParseBearer validates an Authorization header value.
func (tm *TokenManager) ParseBearer(header string) (*domain.Client, error) {
	if header == "" {
		return nil, apperrors.NewUnauthorized("missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}
	client, err := tm.ParseToken(strings.TrimSpace(token))
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	return client, nil
}
