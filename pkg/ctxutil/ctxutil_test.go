package ctxutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientID_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithClientID(context.Background(), "agent-1")

	assert.Equal(t, "agent-1", ClientIDFromCtx(ctx))
	assert.Empty(t, ClientIDFromCtx(context.Background()))
}

func TestRequestID_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "req-9")

	assert.Equal(t, "req-9", RequestIDFromCtx(ctx))
	assert.Empty(t, RequestIDFromCtx(context.Background()))
}
