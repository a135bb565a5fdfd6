package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ticket-tools/internal/config"
	"github.com/spec-kit/ticket-tools/pkg/ctxutil"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.RecordRequest("/tools/tickets", "GET", 200, time.Millisecond)
	m.RecordRequest("/tools/tickets", "GET", 200, time.Millisecond)
	m.RecordError("/tools/tickets/:id", "GET", "NOT_FOUND")
	m.RecordToolCall("hubspot_add_note", true, 20*time.Millisecond)
	m.RecordToolCall("hubspot_add_note", false, 10*time.Millisecond)

	s := m.Snapshot()
	assert.EqualValues(t, 2, s.Requests["/tools/tickets|GET|200"])
	assert.EqualValues(t, 1, s.Errors["/tools/tickets/:id|GET|NOT_FOUND"])
	assert.EqualValues(t, 1, s.ToolCalls["hubspot_add_note|ok"])
	assert.EqualValues(t, 1, s.ToolCalls["hubspot_add_note|error"])
	assert.EqualValues(t, 30, s.ToolLatencyMSec["hubspot_add_note"])

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordRequest("/", "GET", 200, 0)
		nilMetrics.RecordToolCall("x", true, 0)
		_ = nilMetrics.Snapshot()
	})
}

func TestNewLogger_FallsBackToInfo(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger(config.LoggerConfig{Level: "loud"}, "stderr")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))

	debug, err := NewLogger(config.LoggerConfig{Level: "DEBUG"})
	require.NoError(t, err)
	assert.True(t, debug.Core().Enabled(zap.DebugLevel))
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendString(ctxutil.RequestIDFromCtx(c.UserContext()))
	})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-1", resp.Header.Get(RequestIDHeader))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	assert.EqualValues(t, 1, metrics.Snapshot().Requests["/ok|GET|200"])
}
