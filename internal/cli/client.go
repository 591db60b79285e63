package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcoot/draftboard/internal/api/request"
	"github.com/mcoot/draftboard/internal/api/response"
)

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new API client
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			// Refresh waits on the upstream fetch
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// BaseURL returns the server URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError represents an error response from the API
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Do performs an HTTP request
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	u := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request",
		slog.String("method", method),
		slog.String("url", u),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			errResp.Error.Status = resp.StatusCode
			return &errResp.Error
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

func sessionPath(code string, parts ...string) string {
	p := "/api/v1/sessions/" + url.PathEscape(code)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// Health returns the server's health summary
func (c *Client) Health(ctx context.Context) (*response.Health, error) {
	var result response.Health
	if err := c.Do(ctx, http.MethodGet, "/api/v1/health", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateSession creates a board session following draftID
func (c *Client) CreateSession(ctx context.Context, draftID, filter string) (*response.Session, error) {
	var result response.Session
	req := request.CreateSessionRequest{DraftID: draftID, Filter: filter}
	if err := c.Do(ctx, http.MethodPost, "/api/v1/sessions", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListSessions returns every session, ordered by code
func (c *Client) ListSessions(ctx context.Context) (*response.SessionList, error) {
	var result response.SessionList
	if err := c.Do(ctx, http.MethodGet, "/api/v1/sessions", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetSession(ctx context.Context, code string) (*response.Session, error) {
	var result response.Session
	if err := c.Do(ctx, http.MethodGet, sessionPath(code), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteSession(ctx context.Context, code string) error {
	return c.Do(ctx, http.MethodDelete, sessionPath(code), nil, nil)
}

// Board returns the session's reconciled board
func (c *Client) Board(ctx context.Context, code string) (*response.Board, error) {
	var result response.Board
	if err := c.Do(ctx, http.MethodGet, sessionPath(code, "board"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Picks(ctx context.Context, code string) (*response.PickList, error) {
	var result response.PickList
	if err := c.Do(ctx, http.MethodGet, sessionPath(code, "picks"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Available returns the available list. A non-nil position overrides the
// session's filter for this request only.
func (c *Client) Available(ctx context.Context, code string, position *string) (*response.AvailableList, error) {
	path := sessionPath(code, "available")
	if position != nil {
		path += "?" + url.Values{"position": {*position}}.Encode()
	}

	var result response.AvailableList
	if err := c.Do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetFilter changes the session's position filter. An empty position clears it.
func (c *Client) SetFilter(ctx context.Context, code, position string) (*response.Board, error) {
	var result response.Board
	req := request.SetFilterRequest{Position: position}
	if err := c.Do(ctx, http.MethodPut, sessionPath(code, "filter"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ChangeDraft points the session at another draft
func (c *Client) ChangeDraft(ctx context.Context, code, draftID string) (*response.Board, error) {
	var result response.Board
	req := request.ChangeDraftRequest{DraftID: draftID}
	if err := c.Do(ctx, http.MethodPut, sessionPath(code, "draft"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Refresh fetches the session's draft now and returns the resulting board
func (c *Client) Refresh(ctx context.Context, code string) (*response.Board, error) {
	var result response.Board
	if err := c.Do(ctx, http.MethodPost, sessionPath(code, "refresh"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Player looks up a roster entry by Sleeper id
func (c *Client) Player(ctx context.Context, id string) (*response.Player, error) {
	var result response.Player
	if err := c.Do(ctx, http.MethodGet, "/api/v1/roster/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Rankings returns the loaded ranking list, optionally for one position
func (c *Client) Rankings(ctx context.Context, position string) (*response.RankingList, error) {
	path := "/api/v1/rankings"
	if position != "" {
		path += "?" + url.Values{"position": {position}}.Encode()
	}

	var result response.RankingList
	if err := c.Do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
