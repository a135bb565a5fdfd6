package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-tools/internal/events"
	"github.com/spec-kit/ticket-tools/internal/hubspot"
	"github.com/spec-kit/ticket-tools/pkg/ctxutil"
)

// RecordStore is the subset of the vendor API the ticket tools read and write.
type RecordStore interface {
	SearchRecords(ctx context.Context, req hubspot.SearchRequest) (*hubspot.Page, error)
	ListRecords(ctx context.Context, objectType string, limit int, properties []string) (*hubspot.Page, error)
	GetRecord(ctx context.Context, objectType, id string, properties, associations []string) (*hubspot.Record, error)
	CreateRecord(ctx context.Context, objectType string, properties map[string]string, associations []hubspot.AssociationSpec) (*hubspot.Record, error)
}

// OwnerDirectory lists assignable users.
type OwnerDirectory interface {
	ListOwners(ctx context.Context, limit int) ([]hubspot.DirectoryUser, error)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ClientID == "" {
		event.ClientID = ctxutil.ClientIDFromCtx(ctx)
	}
	_ = dispatcher.Publish(ctx, event)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
