package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spec-kit/ticket-tools/internal/api/dto"
	"github.com/spec-kit/ticket-tools/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tools/internal/domain"
	apperrors "github.com/spec-kit/ticket-tools/pkg/util/errorutil"
)

// Tool names exposed to MCP clients.
const (
	ToolTestConnection  = "hubspot_test_connection"
	ToolListTickets     = "hubspot_list_tickets"
	ToolGetTicket       = "hubspot_get_ticket"
	ToolGetTicketEmails = "hubspot_get_ticket_emails"
	ToolListOwners      = "hubspot_list_owners"
	ToolFindOwners      = "hubspot_find_owners"
	ToolAddNote         = "hubspot_add_note"
)

// Tool is one MCP tool definition with its handler.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type testConnectionTool struct{ tickets handlers.TicketTools }

func (t testConnectionTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolTestConnection,
		mcp.WithDescription("Check that the ticketing system accepts the configured credentials"),
	)
}

func (t testConnectionTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(dto.ConnectionResponse{Connected: t.tickets.TestConnection(ctx)})
}

type listTicketsTool struct{ tickets handlers.TicketTools }

func (t listTicketsTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolListTickets,
		mcp.WithDescription("List up to 100 tickets. All supplied filters must match; with no filters the most recent tickets are returned"),
		mcp.WithArray("groups", mcp.Description("Pipeline (group) ids to include"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithArray("statuses", mcp.Description("Pipeline stage ids to include"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithArray("priorities", mcp.Description("Priorities to include, e.g. HIGH, MEDIUM, LOW"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithArray("owners", mcp.Description("Owner ids to include"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("query", mcp.Description("Free text matched against the ticket subject")),
	)
}

func (t listTicketsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := dto.TicketListQuery{
		Groups:     stringList(req, "groups"),
		Statuses:   stringList(req, "statuses"),
		Priorities: stringList(req, "priorities"),
		Owners:     stringList(req, "owners"),
		Query:      req.GetString("query", ""),
	}
	tickets, err := t.tickets.ListTickets(ctx, q.Criteria())
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(dto.NewTicketSummaries(tickets))
}

type getTicketTool struct{ tickets handlers.TicketTools }

func (t getTicketTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolGetTicket,
		mcp.WithDescription("Get one ticket with all properties and linked email, note, contact and company ids"),
		mcp.WithString("ticket_id", mcp.Required(), mcp.Description("Ticket id")),
	)
}

func (t getTicketTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("ticket_id", ""))
	if id == "" {
		return mcp.NewToolResultError("ticket_id is required"), nil
	}
	ticket, err := t.tickets.GetTicketDetails(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(dto.NewTicketDetail(ticket))
}

type getTicketEmailsTool struct{ tickets handlers.TicketTools }

func (t getTicketEmailsTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolGetTicketEmails,
		mcp.WithDescription("Get the ticket's email conversation as plain text, oldest first"),
		mcp.WithString("ticket_id", mcp.Required(), mcp.Description("Ticket id")),
	)
}

func (t getTicketEmailsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("ticket_id", ""))
	if id == "" {
		return mcp.NewToolResultError("ticket_id is required"), nil
	}
	messages, err := t.tickets.GetTicketEmails(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(dto.NewConversation(messages))
}

type listOwnersTool struct{ owners handlers.OwnerLookup }

func (t listOwnersTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolListOwners,
		mcp.WithDescription("List users tickets can be assigned to"),
	)
}

func (t listOwnersTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(dto.NewOwners(t.owners.ListOwners(ctx)))
}

type findOwnersTool struct{ owners handlers.OwnerLookup }

func (t findOwnersTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolFindOwners,
		mcp.WithDescription("Find owners whose name or email contains the search term, case-insensitive"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Part of a first name, last name, full name or email")),
	)
}

func (t findOwnersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term := strings.TrimSpace(req.GetString("name", ""))
	if term == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	return jsonResult(dto.NewOwnerMatches(t.owners.FindOwnersByName(ctx, term)))
}

type addNoteTool struct{ tickets handlers.TicketTools }

func (t addNoteTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolAddNote,
		mcp.WithDescription("Add an internal note to a ticket"),
		mcp.WithString("ticket_id", mcp.Required(), mcp.Description("Ticket id")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Note text")),
	)
}

func (t addNoteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("ticket_id", ""))
	body := req.GetString("body", "")
	if id == "" || strings.TrimSpace(body) == "" {
		return mcp.NewToolResultError("ticket_id and body are required"), nil
	}
	noteID, err := t.tickets.CreateNote(ctx, id, body)
	if err != nil {
		return jsonResult(dto.AddNoteResponse{Success: false})
	}
	return jsonResult(dto.AddNoteResponse{Success: true, NoteID: noteID})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(body)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	domainErr := apperrors.ToDomainError(err)
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", domainErr.Code, domainErr.Error()))
}

// stringList accepts a JSON array or a comma separated string.
func stringList(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil
	}
	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			} else if item != nil {
				add(fmt.Sprint(item))
			}
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			add(s)
		}
	}
	return out
}

func requiredScope(tool string) domain.Scope {
	if tool == ToolAddNote {
		return domain.ScopeWrite
	}
	return domain.ScopeRead
}
