package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-tools/internal/domain"
	"github.com/spec-kit/ticket-tools/pkg/ctxutil"
	apperrors "github.com/spec-kit/ticket-tools/pkg/util/errorutil"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 5)
	issued, err := tm.GenerateToken(domain.Client{ID: "bot", Scopes: []domain.Scope{domain.ScopeRead}})
	require.NoError(t, err)
	assert.Equal(t, "bot", issued.ClientID)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), issued.ExpiresAt, 5*time.Second)

	client, err := tm.ParseToken(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "bot", client.ID)
	assert.True(t, client.HasScope(domain.ScopeRead))
	assert.False(t, client.HasScope(domain.ScopeWrite))
}

func TestTokenManager_Rejects(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 5)

	other, err := NewTokenManager("other", 5).GenerateToken(domain.Client{ID: "bot"})
	require.NoError(t, err)
	_, err = tm.ParseToken(other.AccessToken)
	assert.Error(t, err, "wrong secret")

	expired := NewTokenManager("secret", 5)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.GenerateToken(domain.Client{ID: "bot"})
	require.NoError(t, err)
	_, err = tm.ParseToken(old.AccessToken)
	assert.Error(t, err, "expired")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "bot"}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.ParseToken(unsigned)
	assert.Error(t, err, "alg none")

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "bot",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}})
	signed, err := foreign.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.ParseToken(signed)
	assert.Error(t, err, "issuer")
}

func TestTokenManager_ParseBearer(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 5)
	issued, err := tm.GenerateToken(domain.Client{ID: "bot"})
	require.NoError(t, err)

	client, err := tm.ParseBearer("bearer " + issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "bot", client.ID)

	for _, header := range []string{"", "Basic abc", issued.AccessToken, "Bearer garbage"} {
		_, err := tm.ParseBearer(header)
		require.Error(t, err, header)
		assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code, header)
	}
}

func TestClientRegistry_Authenticate(t *testing.T) {
	t.Parallel()

	hash, err := HashSecret("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	tm := NewTokenManager("jwt", 5)
	reg := NewClientRegistry(map[string]string{"writer": hash, "reader": hash}, []string{"reader"}, tm)

	token, err := reg.Authenticate("writer", "s3cret")
	require.NoError(t, err)
	client, err := tm.ParseToken(token.AccessToken)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.Scope{domain.ScopeRead, domain.ScopeWrite}, client.Scopes)

	token, err = reg.Authenticate("reader", "s3cret")
	require.NoError(t, err)
	client, err = tm.ParseToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []domain.Scope{domain.ScopeRead}, client.Scopes)

	for _, tc := range []struct{ id, secret string }{{"writer", "wrong"}, {"ghost", "s3cret"}, {"", ""}} {
		_, err := reg.Authenticate(tc.id, tc.secret)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)
	}
}

func newAuthApp(tm *TokenManager, scope domain.Scope) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Get("/tools", NewAuthMiddleware(tm).Handle, RequireScope(scope), func(c *fiber.Ctx) error {
		return c.SendString(ctxutil.ClientIDFromCtx(c.UserContext()))
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("jwt", 5)
	reader, err := tm.GenerateToken(domain.Client{ID: "reader", Scopes: []domain.Scope{domain.ScopeRead}})
	require.NoError(t, err)

	tests := []struct {
		name   string
		scope  domain.Scope
		header string
		want   int
	}{
		{name: "missing header", scope: domain.ScopeRead, want: http.StatusUnauthorized},
		{name: "wrong scheme", scope: domain.ScopeRead, header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage token", scope: domain.ScopeRead, header: "Bearer abc", want: http.StatusUnauthorized},
		{name: "valid token", scope: domain.ScopeRead, header: "Bearer " + reader.AccessToken, want: http.StatusOK},
		{name: "missing scope", scope: domain.ScopeWrite, header: "bearer " + reader.AccessToken, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tools", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := newAuthApp(tm, tt.scope).Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
