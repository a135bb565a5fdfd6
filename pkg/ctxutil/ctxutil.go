package ctxutil

import "context"

type ctxKey string

const (
	clientIDKey  ctxKey = "client_id"
	requestIDKey ctxKey = "request_id"
)

// WithClientID stores the calling tool client id in the context.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey, id)
}

// ClientIDFromCtx extracts the client id. Returns "" when absent.
func ClientIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey).(string)
	return id
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
