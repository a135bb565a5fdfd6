package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/ticket-tools/internal/domain"
)

const toolEventsTable = "tool_events"

var toolEventColumns = []string{"id", "event_type", "ticket_id", "client_id", "outcome", "payload", "created_at"}

// Querier is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ToolEventFilter narrows audit listings.
type ToolEventFilter struct {
	TicketID *string
	ClientID *string
	Type     *string
	Since    *time.Time
	Limit    int
	Offset   int
}

// ToolEventRepository persists the append-only tool audit trail.
type ToolEventRepository interface {
	Create(ctx context.Context, event *domain.ToolEvent) error
	List(ctx context.Context, filter ToolEventFilter) ([]domain.ToolEvent, error)
}

type toolEventRepository struct {
	q  Querier
	sb sq.StatementBuilderType
}

// NewToolEventRepository instantiates repository.
func NewToolEventRepository(q Querier) ToolEventRepository {
	return &toolEventRepository{
		q:  q,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *toolEventRepository) Create(ctx context.Context, event *domain.ToolEvent) error {
	if event == nil || event.ID == "" || event.Type == "" {
		return fmt.Errorf("tool event: id and type are required")
	}
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("tool event %s marshal payload: %w", event.ID, err)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.sb.Insert(toolEventsTable).
		Columns(toolEventColumns...).
		Values(event.ID, event.Type, event.TicketID, event.ClientID, event.Outcome, payload, event.CreatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert tool event %s: %w", event.ID, err)
	}
	return nil
}

func (r *toolEventRepository) List(ctx context.Context, filter ToolEventFilter) ([]domain.ToolEvent, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	builder := r.sb.Select(toolEventColumns...).
		From(toolEventsTable).
		OrderBy("created_at DESC").
		Limit(uint64(limit))
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}
	if filter.TicketID != nil {
		builder = builder.Where(sq.Eq{"ticket_id": *filter.TicketID})
	}
	if filter.ClientID != nil {
		builder = builder.Where(sq.Eq{"client_id": *filter.ClientID})
	}
	if filter.Type != nil {
		builder = builder.Where(sq.Eq{"event_type": *filter.Type})
	}
	if filter.Since != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *filter.Since})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tool events: %w", err)
	}
	defer rows.Close()

	var out []domain.ToolEvent
	for rows.Next() {
		var (
			ev      domain.ToolEvent
			payload []byte
		)
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.TicketID, &ev.ClientID, &ev.Outcome, &payload, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &ev.Payload); err != nil {
				return nil, fmt.Errorf("tool event %s unmarshal payload: %w", ev.ID, err)
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return out, nil
}
