package service

import (
	"context"
	"sync"

	"github.com/spec-kit/ticket-tools/internal/events"
	"github.com/spec-kit/ticket-tools/internal/hubspot"
)

type mockRecordStore struct {
	mu sync.Mutex

	SearchRecordsFunc func(ctx context.Context, req hubspot.SearchRequest) (*hubspot.Page, error)
	ListRecordsFunc   func(ctx context.Context, objectType string, limit int, properties []string) (*hubspot.Page, error)
	GetRecordFunc     func(ctx context.Context, objectType, id string, properties, associations []string) (*hubspot.Record, error)
	CreateRecordFunc  func(ctx context.Context, objectType string, properties map[string]string, associations []hubspot.AssociationSpec) (*hubspot.Record, error)

	searchCalls []hubspot.SearchRequest
	listCalls   int
	getCalls    []string
	createCalls int
}

func (m *mockRecordStore) SearchRecords(ctx context.Context, req hubspot.SearchRequest) (*hubspot.Page, error) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, req)
	m.mu.Unlock()
	if m.SearchRecordsFunc == nil {
		return &hubspot.Page{}, nil
	}
	return m.SearchRecordsFunc(ctx, req)
}

func (m *mockRecordStore) ListRecords(ctx context.Context, objectType string, limit int, properties []string) (*hubspot.Page, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.ListRecordsFunc == nil {
		return &hubspot.Page{}, nil
	}
	return m.ListRecordsFunc(ctx, objectType, limit, properties)
}

func (m *mockRecordStore) GetRecord(ctx context.Context, objectType, id string, properties, associations []string) (*hubspot.Record, error) {
	m.mu.Lock()
	m.getCalls = append(m.getCalls, objectType+"/"+id)
	m.mu.Unlock()
	if m.GetRecordFunc == nil {
		return nil, hubspot.ErrNotFound
	}
	return m.GetRecordFunc(ctx, objectType, id, properties, associations)
}

func (m *mockRecordStore) CreateRecord(ctx context.Context, objectType string, properties map[string]string, associations []hubspot.AssociationSpec) (*hubspot.Record, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.CreateRecordFunc == nil {
		return &hubspot.Record{ID: "note-1"}, nil
	}
	return m.CreateRecordFunc(ctx, objectType, properties, associations)
}

type mockOwnerDirectory struct {
	mu    sync.Mutex
	calls int

	ListOwnersFunc func(ctx context.Context, limit int) ([]hubspot.DirectoryUser, error)
}

func (m *mockOwnerDirectory) ListOwners(ctx context.Context, limit int) ([]hubspot.DirectoryUser, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.ListOwnersFunc(ctx, limit)
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) SubscribeAll(events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

func strPtr(s string) *string { return &s }
