package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tools/internal/config"
	apperrors "github.com/spec-kit/ticket-tools/pkg/util/errorutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.HubSpotConfig{BaseURL: srv.URL, AccessToken: "pat-test", TimeoutSeconds: 5}, zap.NewNop())
}

func TestClient_SearchRecords_SendsFilterGroups(t *testing.T) {
	t.Parallel()

	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/v3/objects/tickets/search", r.URL.Path)
		assert.Equal(t, "Bearer pat-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"total":1,"results":[{"id":"7","properties":{"subject":"Printer down","content":null}}]}`))
	})

	page, err := client.SearchRecords(context.Background(), SearchRequest{
		ObjectType: ObjectTickets,
		FilterGroups: []FilterGroup{{Filters: []Filter{
			{PropertyName: "hs_ticket_priority", Operator: "IN", Values: []string{"HIGH"}},
			{PropertyName: "subject", Operator: "CONTAINS_TOKEN", Value: "printer"},
		}}},
		Properties: []string{"subject"},
		Limit:      100,
	})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "7", page.Results[0].ID)
	require.NotNil(t, page.Results[0].Properties["subject"])
	assert.Equal(t, "Printer down", *page.Results[0].Properties["subject"])
	assert.Nil(t, page.Results[0].Properties["content"])

	assert.EqualValues(t, 100, got["limit"])
	assert.NotContains(t, got, "sorts")
	groups := got["filterGroups"].([]any)
	require.Len(t, groups, 1)
	filters := groups[0].(map[string]any)["filters"].([]any)
	require.Len(t, filters, 2)
	assert.Equal(t, "CONTAINS_TOKEN", filters[1].(map[string]any)["operator"])
	assert.Equal(t, "printer", filters[1].(map[string]any)["value"])
}

func TestClient_ListRecords_QueryParams(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/crm/v3/objects/tickets", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "subject,content", r.URL.Query().Get("properties"))
		_, _ = w.Write([]byte(`{"results":[{"id":"1","properties":{}},{"id":"2"}],"paging":{"next":{"after":"2"}}}`))
	})

	page, err := client.ListRecords(context.Background(), ObjectTickets, 100, []string{"subject", "content"})
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "2", page.After)
	assert.NotNil(t, page.Results[1].Properties)
}

func TestClient_GetRecord_Associations(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/objects/tickets/42", r.URL.Path)
		assert.Equal(t, "emails", r.URL.Query().Get("associations"))
		_, _ = w.Write([]byte(`{
			"id":"42",
			"properties":{"subject":"x"},
			"createdAt":"2024-03-01T10:00:00Z",
			"associations":{"emails":{"results":[
				{"id":"100","type":"ticket_to_email"},
				{"id":"100","type":"ticket_to_email_label"},
				{"id":"101","type":"ticket_to_email"}
			]}}
		}`))
	})

	rec, err := client.GetRecord(context.Background(), ObjectTickets, "42", []string{"subject"}, []string{"emails"})
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "101"}, rec.Associations["emails"])
	assert.Equal(t, 2024, rec.CreatedAt.Year())
}

func TestClient_GetRecord_NotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"error","message":"Object not found","category":"OBJECT_NOT_FOUND","correlationId":"abc"}`))
	})

	_, err := client.GetRecord(context.Background(), ObjectTickets, "missing", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "OBJECT_NOT_FOUND", apiErr.Category)
	assert.Equal(t, "abc", apiErr.CorrelationID)
}

func TestClient_ServerErrorIsNotNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListOwners(context.Background(), 100)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClient_ErrorStatusMapsToDomainCode(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		http.StatusTooManyRequests: "UPSTREAM_RATE_LIMITED",
		http.StatusUnauthorized:    "UPSTREAM_AUTH_FAILED",
		http.StatusNotFound:        "NOT_FOUND",
		http.StatusBadGateway:      "UPSTREAM_FAILED",
	}
	for status, code := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := client.ListOwners(context.Background(), 100)
		require.Error(t, err)
		assert.Equal(t, code, apperrors.ToDomainError(err).Code, "status %d", status)
	}
}

func TestClient_CreateRecord_Associations(t *testing.T) {
	t.Parallel()

	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/objects/notes", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"900","properties":{"hs_note_body":"hi"}}`))
	})

	rec, err := client.CreateRecord(context.Background(), ObjectNotes,
		map[string]string{"hs_note_body": "hi"},
		[]AssociationSpec{{ToID: "42", Category: "HUBSPOT_DEFINED", TypeID: NoteToTicketAssociation}})
	require.NoError(t, err)
	assert.Equal(t, "900", rec.ID)

	assocs := got["associations"].([]any)
	require.Len(t, assocs, 1)
	assoc := assocs[0].(map[string]any)
	assert.Equal(t, "42", assoc["to"].(map[string]any)["id"])
	types := assoc["types"].([]any)
	assert.EqualValues(t, 228, types[0].(map[string]any)["associationTypeId"])
	assert.Equal(t, "HUBSPOT_DEFINED", types[0].(map[string]any)["associationCategory"])
}

func TestClient_ListOwners(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/owners", r.URL.Path)
		_, _ = w.Write([]byte(`{"results":[{"id":"1","email":"ryan@x.com","firstName":"Ryan","lastName":"Jones"},{"id":"2"}]}`))
	})

	users, err := client.ListOwners(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ryan", users[0].FirstName)
	assert.Empty(t, users[1].Email)
}
