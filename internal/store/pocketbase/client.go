// Package pocketbase implements store.Store against a PocketBase server's
// records REST API.
package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/student-lookup/internal/store"
	"github.com/aanand-mishra/student-lookup/internal/types"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the PocketBase client.
type ClientConfig struct {
	// BaseURL is the server root, e.g. http://127.0.0.1:8090
	BaseURL string

	// Token is sent as the Authorization header when set
	Token string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// Logger for structured logging
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// APIError is the error body PocketBase returns with non-2xx responses.
type APIError struct {
	Status  int            `json:"-"`
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pocketbase: status %d: %s", e.Status, e.Message)
}

// FieldCode returns the validation code PocketBase reported for field,
// e.g. "validation_not_unique", or "" if there is none.
func (e *APIError) FieldCode(field string) string {
	detail, ok := e.Data[field].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := detail["code"].(string)
	return code
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is a PocketBase records client. It is safe for concurrent use.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new PocketBase client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: config.Logger,
	}
}

// listResponse is the envelope of GET /api/collections/{c}/records.
type listResponse struct {
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	TotalItems int               `json:"totalItems"`
	TotalPages int               `json:"totalPages"`
	Items      []json.RawMessage `json:"items"`
}

// Find lists the first q.Limit records of q.Collection matching
// q.Field = q.Value. The value is bound through Filter, never spliced.
func (c *Client) Find(ctx context.Context, q store.Query) ([]store.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("page", "1")
	params.Set("perPage", strconv.Itoa(q.Limit))
	params.Set("skipTotal", "1")
	params.Set("filter", Filter(q.Field+" = {:value}", map[string]any{"value": q.Value}))

	path := fmt.Sprintf("/api/collections/%s/records?%s", url.PathEscape(q.Collection), params.Encode())

	var response listResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, fmt.Errorf("list %s: %w", q.Collection, err)
	}
	if response.Items == nil {
		return nil, fmt.Errorf("list %s: %w: response has no items", q.Collection, store.ErrMalformedRecord)
	}

	records := make([]store.Record, 0, len(response.Items))
	for i, raw := range response.Items {
		var record store.Record
		if err := json.Unmarshal(raw, &record); err != nil || record == nil {
			return nil, fmt.Errorf("list %s: item %d: %w", q.Collection, i, store.ErrMalformedRecord)
		}
		records = append(records, record)
	}

	return records, nil
}

// Insert creates a record in collection. PocketBase assigns the id.
func (c *Client) Insert(ctx context.Context, collection string, s types.Student) (string, error) {
	if !store.IsIdentifier(collection) {
		return "", fmt.Errorf("%w: bad collection %q", store.ErrInvalidQuery, collection)
	}

	body := map[string]string{
		"sid":     s.SID,
		"name":    s.Name,
		"college": s.College,
		"major":   s.Major,
	}

	var created struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/api/collections/%s/records", url.PathEscape(collection))
	if err := c.doRequest(ctx, http.MethodPost, path, body, &created); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.FieldCode("sid") == "validation_not_unique" {
			return "", fmt.Errorf("create in %s: %s: %w", collection, s.SID, store.ErrDuplicateSID)
		}
		return "", fmt.Errorf("create in %s: %w", collection, err)
	}

	return created.ID, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs a single HTTP request and decodes the JSON result.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", c.config.Token)
	}

	c.logger.Debug("pocketbase request", slog.String("method", method), slog.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", store.ErrMalformedRecord, err)
		}
	}

	return nil
}
