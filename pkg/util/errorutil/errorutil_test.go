package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ToDomainError(nil))

	notFound := NewNotFound("ticket", nil)
	wrapped := fmt.Errorf("get: %w", notFound)
	got := ToDomainError(wrapped)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
	assert.Equal(t, "ticket not found", got.Message)
	assert.True(t, IsNotFound(wrapped))

	plain := ToDomainError(errors.New("disk full"))
	assert.Equal(t, "INTERNAL_ERROR", plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.HTTPStatus)
}

func TestNewUpstreamError_Unwraps(t *testing.T) {
	t.Parallel()

	cause := errors.New("503 from vendor")
	err := NewUpstreamError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "UPSTREAM_FAILED", ToDomainError(err).Code)
	assert.Equal(t, http.StatusBadGateway, ToDomainError(err).HTTPStatus)
	assert.Contains(t, err.Error(), "503 from vendor")
	assert.False(t, IsNotFound(err))
}

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("vendor status %d", int(e)) }
func (e statusErr) StatusCode() int { return int(e) }

func TestToDomainError_VendorStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		status     int
		code       string
		httpStatus int
	}{
		{name: "rate limited", status: 429, code: "UPSTREAM_RATE_LIMITED", httpStatus: http.StatusTooManyRequests},
		{name: "unauthorized", status: 401, code: "UPSTREAM_AUTH_FAILED", httpStatus: http.StatusBadGateway},
		{name: "forbidden", status: 403, code: "UPSTREAM_AUTH_FAILED", httpStatus: http.StatusBadGateway},
		{name: "server error", status: 503, code: "UPSTREAM_FAILED", httpStatus: http.StatusBadGateway},
		{name: "not found", status: 404, code: "NOT_FOUND", httpStatus: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := fmt.Errorf("call: %w", statusErr(tc.status))
			got := ToDomainError(err)
			assert.Equal(t, tc.code, got.Code)
			assert.Equal(t, tc.httpStatus, got.HTTPStatus)
			assert.ErrorIs(t, got, statusErr(tc.status))
		})
	}
}

func TestNewUpstreamError_RateLimited(t *testing.T) {
	t.Parallel()

	err := NewUpstreamError(statusErr(http.StatusTooManyRequests))

	assert.Equal(t, "UPSTREAM_RATE_LIMITED", ToDomainError(err).Code)
	assert.Equal(t, http.StatusTooManyRequests, ToDomainError(err).HTTPStatus)
}

func TestMapError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, MapError(nil))
	assert.Equal(t, "VALIDATION_FAILED", ToDomainError(MapError(NewValidationError("bad", nil))).Code)
}
