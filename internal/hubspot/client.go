package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tools/internal/config"
)

const maxErrorBody = 4 << 10

// Client talks to the HubSpot CRM v3 REST API. It performs no retries.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a client from configuration.
func NewClient(cfg config.HubSpotConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.AccessToken,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		logger:     logger.With(zap.String("adapter", "hubspot")),
	}
}

// SearchRecords runs a filtered search against an object type.
func (c *Client) SearchRecords(ctx context.Context, req SearchRequest) (*Page, error) {
	var payload pagePayload
	path := fmt.Sprintf("/crm/v3/objects/%s/search", req.ObjectType)
	if err := c.do(ctx, http.MethodPost, path, nil, req, &payload); err != nil {
		return nil, err
	}
	return payload.toPage(), nil
}

// ListRecords returns the first page of an object type without filters.
func (c *Client) ListRecords(ctx context.Context, objectType string, limit int, properties []string) (*Page, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if len(properties) > 0 {
		query.Set("properties", strings.Join(properties, ","))
	}
	var payload pagePayload
	if err := c.do(ctx, http.MethodGet, "/crm/v3/objects/"+objectType, query, nil, &payload); err != nil {
		return nil, err
	}
	return payload.toPage(), nil
}

// GetRecord fetches one record by id with the requested properties and
// association kinds expanded to id lists.
func (c *Client) GetRecord(ctx context.Context, objectType, id string, properties, associations []string) (*Record, error) {
	query := url.Values{}
	if len(properties) > 0 {
		query.Set("properties", strings.Join(properties, ","))
	}
	if len(associations) > 0 {
		query.Set("associations", strings.Join(associations, ","))
	}
	var payload recordPayload
	path := fmt.Sprintf("/crm/v3/objects/%s/%s", objectType, url.PathEscape(id))
	if err := c.do(ctx, http.MethodGet, path, query, nil, &payload); err != nil {
		return nil, err
	}
	rec := payload.toRecord()
	return &rec, nil
}

// ListOwners returns one page of directory users.
func (c *Client) ListOwners(ctx context.Context, limit int) ([]DirectoryUser, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	var payload ownersPayload
	if err := c.do(ctx, http.MethodGet, "/crm/v3/owners", query, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// CreateRecord creates a record of objectType with the given associations.
func (c *Client) CreateRecord(ctx context.Context, objectType string, properties map[string]string, associations []AssociationSpec) (*Record, error) {
	body := createPayload{Properties: properties}
	for _, a := range associations {
		var assoc createAssociation
		assoc.To.ID = a.ToID
		assoc.Types = []associationType{{Category: a.Category, TypeID: a.TypeID}}
		body.Associations = append(body.Associations, assoc)
	}
	var payload recordPayload
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/"+objectType, nil, body, &payload); err != nil {
		return nil, err
	}
	rec := payload.toRecord()
	return &rec, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("hubspot: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("hubspot: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("hubspot request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("hubspot: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("hubspot request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("hubspot: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload errorPayload
	if len(raw) > 0 && json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			apiErr.Message = payload.Message
		}
		apiErr.Category = payload.Category
		apiErr.CorrelationID = payload.CorrelationID
	}
	return apiErr
}

func (p pagePayload) toPage() *Page {
	page := &Page{Total: p.Total, Results: make([]Record, 0, len(p.Results))}
	for _, r := range p.Results {
		page.Results = append(page.Results, r.toRecord())
	}
	if p.Paging != nil && p.Paging.Next != nil {
		page.After = p.Paging.Next.After
	}
	return page
}
