// Package mcpserver exposes the ticket tools to MCP clients.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tools/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tools/internal/auth"
	"github.com/spec-kit/ticket-tools/internal/observability"
	"github.com/spec-kit/ticket-tools/pkg/ctxutil"
)

const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Dependencies wires the tool server.
type Dependencies struct {
	Name    string
	Version string
	// Transport is TransportHTTP or TransportStdio.
	Transport string
	Tickets   handlers.TicketTools
	Owners    handlers.OwnerLookup
	// Tokens authenticates HTTP callers. stdio callers are local and
	// trusted, so the scope check only runs when Tokens is set on HTTP.
	Tokens  *auth.TokenManager
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// Server owns the MCP server and its tools.
type Server struct {
	mcp       *server.MCPServer
	http      *server.StreamableHTTPServer
	transport string
	tokens    *auth.TokenManager
	metrics   *observability.Metrics
	logger    *zap.Logger
	tools     map[string]Tool
}

// New registers every tool on a fresh MCP server.
func New(deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := deps.Transport
	if transport == "" {
		transport = TransportHTTP
	}
	s := &Server{
		mcp: server.NewMCPServer(deps.Name, deps.Version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
		transport: transport,
		tokens:    deps.Tokens,
		metrics:   deps.Metrics,
		logger:    logger,
		tools:     map[string]Tool{},
	}
	if transport == TransportStdio {
		s.tokens = nil
	}
	for _, tool := range Tools(deps.Tickets, deps.Owners) {
		def := tool.Definition()
		s.tools[def.Name] = tool
		s.mcp.AddTool(def, s.wrap(def.Name, tool.Handle))
	}
	s.http = server.NewStreamableHTTPServer(s.mcp, server.WithHTTPContextFunc(s.authContext))
	return s
}

// Tools lists the exposed tools in registration order.
func Tools(tickets handlers.TicketTools, owners handlers.OwnerLookup) []Tool {
	return []Tool{
		testConnectionTool{tickets: tickets},
		listTicketsTool{tickets: tickets},
		getTicketTool{tickets: tickets},
		getTicketEmailsTool{tickets: tickets},
		listOwnersTool{owners: owners},
		findOwnersTool{owners: owners},
		addNoteTool{tickets: tickets},
	}
}

// Call runs a tool through the same scope check, logging and metrics as a
// transport call.
func (s *Server) Call(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tool, ok := s.tools[req.Params.Name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown tool %q", req.Params.Name)), nil
	}
	return s.wrap(req.Params.Name, tool.Handle)(ctx, req)
}

func (s *Server) wrap(name string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		if s.tokens != nil {
			client, ok := auth.ClientFromCtx(ctx)
			if !ok {
				s.metrics.RecordToolCall(name, false, time.Since(start))
				return mcp.NewToolResultError("UNAUTHORIZED: missing or invalid bearer token"), nil
			}
			if !client.HasScope(requiredScope(name)) {
				s.metrics.RecordToolCall(name, false, time.Since(start))
				return mcp.NewToolResultError("FORBIDDEN: insufficient scope"), nil
			}
		}

		result, err := next(ctx, req)
		ok := err == nil && result != nil && !result.IsError
		s.metrics.RecordToolCall(name, ok, time.Since(start))
		s.logger.Info("tool call",
			zap.String("tool", name),
			zap.Bool("ok", ok),
			zap.String("client_id", ctxutil.ClientIDFromCtx(ctx)),
			zap.Duration("latency", time.Since(start)),
		)
		return result, err
	}
}

// authContext attaches the bearer token's client to the request context.
// An invalid token leaves the context anonymous and the tool call is refused.
func (s *Server) authContext(ctx context.Context, r *http.Request) context.Context {
	if s.tokens == nil {
		return ctx
	}
	client, err := s.tokens.ParseBearer(r.Header.Get("Authorization"))
	if err != nil {
		return ctx
	}
	return auth.WithClient(ctxutil.WithClientID(ctx, client.ID), client)
}

// Serve blocks on the configured transport.
func (s *Server) Serve(addr string) error {
	switch s.transport {
	case TransportStdio:
		return server.ServeStdio(s.mcp)
	case TransportHTTP:
		s.logger.Info("mcp server listening", zap.String("addr", addr))
		if err := s.http.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown mcp transport %q", s.transport)
	}
}

// Shutdown stops the HTTP transport.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.transport != TransportHTTP {
		return nil
	}
	return s.http.Shutdown(ctx)
}
