package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tools/internal/domain"
	"github.com/spec-kit/ticket-tools/internal/events"
	"github.com/spec-kit/ticket-tools/internal/hubspot"
	apperrors "github.com/spec-kit/ticket-tools/pkg/util/errorutil"
)

func ticketWithEmails(ids ...string) func(context.Context, string, string, []string, []string) (*hubspot.Record, error) {
	return func(_ context.Context, objectType, id string, props, assocs []string) (*hubspot.Record, error) {
		if objectType == hubspot.ObjectTickets {
			return &hubspot.Record{ID: id, Associations: map[string][]string{domain.AssocEmails: ids}}, nil
		}
		return nil, errors.New("unexpected fetch of " + objectType + "/" + id)
	}
}

func TestGetTicketEmails_NoLinkedMessages(t *testing.T) {
	t.Parallel()

	store := &mockRecordStore{GetRecordFunc: ticketWithEmails()}
	d := &recordingDispatcher{}
	svc := newTicketService(store, d)

	messages, err := svc.GetTicketEmails(context.Background(), "10")

	require.NoError(t, err)
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
	assert.Equal(t, []string{"tickets/10"}, store.getCalls)
	assert.Empty(t, d.types())
}

func TestGetTicketEmails_TicketFetchRequestsOnlyEmailLinks(t *testing.T) {
	t.Parallel()

	var gotProps, gotAssocs []string
	store := &mockRecordStore{
		GetRecordFunc: func(_ context.Context, objectType, id string, props, assocs []string) (*hubspot.Record, error) {
			require.Equal(t, hubspot.ObjectTickets, objectType)
			gotProps, gotAssocs = props, assocs
			return &hubspot.Record{ID: id}, nil
		},
	}
	svc := newTicketService(store, &recordingDispatcher{})

	_, err := svc.GetTicketEmails(context.Background(), "10")

	require.NoError(t, err)
	assert.Equal(t, []string{"hs_object_id"}, gotProps)
	assert.Equal(t, []string{domain.AssocEmails}, gotAssocs)
}

func TestGetTicketEmails_DropsFailedMessageAndSorts(t *testing.T) {
	t.Parallel()

	store := &mockRecordStore{
		GetRecordFunc: func(_ context.Context, objectType, id string, props, _ []string) (*hubspot.Record, error) {
			switch objectType + "/" + id {
			case "tickets/10":
				return &hubspot.Record{ID: "10", Associations: map[string][]string{domain.AssocEmails: {"a", "b", "c"}}}, nil
			case "emails/a":
				assert.Equal(t, domain.EmailProperties, props)
				return &hubspot.Record{ID: "a", Properties: map[string]*string{
					domain.PropEmailDate:    strPtr("1700000200000"),
					domain.PropEmailSubject: strPtr("Re: printer"),
					domain.PropEmailHTML:    strPtr("<p>Second <a href='https://x'>reply</a></p>"),
					domain.PropEmailText:    strPtr("ignored"),
				}}, nil
			case "emails/b":
				return nil, errors.New("503 service unavailable")
			case "emails/c":
				return &hubspot.Record{ID: "c", Properties: map[string]*string{
					domain.PropEmailDate: strPtr("1700000100000"),
					domain.PropEmailText: strPtr("  first  "),
				}}, nil
			}
			return nil, hubspot.ErrNotFound
		},
	}
	d := &recordingDispatcher{}
	svc := newTicketService(store, d)

	messages, err := svc.GetTicketEmails(context.Background(), "10")

	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "c", messages[0].ID)
	assert.Equal(t, "first", messages[0].Body)
	assert.Equal(t, "a", messages[1].ID)
	assert.Equal(t, "Second reply", messages[1].Body)
	require.NotNil(t, messages[1].Subject)
	assert.Equal(t, "Re: printer", *messages[1].Subject)
	assert.Nil(t, messages[0].Subject)

	require.Len(t, d.events, 1)
	assert.Equal(t, events.ConversationAssembledPayload{Linked: 3, Fetched: 2, Dropped: 1}, d.events[0].Payload)
}

func TestGetTicketEmails_UnresolvedTimestampSortsFirst(t *testing.T) {
	t.Parallel()

	store := &mockRecordStore{
		GetRecordFunc: func(_ context.Context, objectType, id string, _, _ []string) (*hubspot.Record, error) {
			switch objectType + "/" + id {
			case "tickets/1":
				return &hubspot.Record{ID: "1", Associations: map[string][]string{domain.AssocEmails: {"dated", "undated"}}}, nil
			case "emails/dated":
				return &hubspot.Record{ID: "dated", Properties: map[string]*string{domain.PropTimestamp: strPtr("1600000000000")}}, nil
			default:
				return &hubspot.Record{ID: "undated", Properties: map[string]*string{}}, nil
			}
		},
	}
	svc := newTicketService(store, nil)

	messages, err := svc.GetTicketEmails(context.Background(), "1")

	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "undated", messages[0].ID)
	assert.True(t, messages[0].TimestampFallback)
	assert.True(t, fixedNow.Equal(messages[0].CreatedAt))
	assert.Equal(t, "dated", messages[1].ID)
}

func TestGetTicketEmails_ConcurrentFetchKeepsOrder(t *testing.T) {
	t.Parallel()

	ids := []string{"m1", "m2", "m3", "m4", "m5"}
	millis := map[string]string{"m1": "5000", "m2": "1000", "m3": "4000", "m4": "2000", "m5": "3000"}
	store := &mockRecordStore{
		GetRecordFunc: func(_ context.Context, objectType, id string, _, _ []string) (*hubspot.Record, error) {
			if objectType == hubspot.ObjectTickets {
				return &hubspot.Record{ID: id, Associations: map[string][]string{domain.AssocEmails: ids}}, nil
			}
			return &hubspot.Record{ID: id, Properties: map[string]*string{domain.PropEmailDate: strPtr(millis[id])}}, nil
		},
	}
	svc := NewTicketService(TicketDependencies{Records: store, FetchConcurrency: 3})

	messages, err := svc.GetTicketEmails(context.Background(), "7")

	require.NoError(t, err)
	got := make([]string, 0, len(messages))
	for _, m := range messages {
		got = append(got, m.ID)
	}
	assert.Equal(t, []string{"m2", "m4", "m5", "m3", "m1"}, got)
}

func TestGetTicketEmails_TicketNotFoundPropagates(t *testing.T) {
	t.Parallel()

	svc := newTicketService(&mockRecordStore{}, nil)

	_, err := svc.GetTicketEmails(context.Background(), "404")

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
