// Package sleeper is a read-only client for the public Sleeper API.
package sleeper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcoot/draftboard/internal/model"
)

const (
	DefaultBaseURL = "https://api.sleeper.app"
	DefaultTimeout = 10 * time.Second

	userAgent = "draftboard/1.0"

	// The full NFL player dump is several megabytes
	maxBodyBytes = 64 << 20
)

// Client fetches draft data from Sleeper
type Client interface {
	// DraftPicks returns every pick made so far in the draft, in the order Sleeper sends them
	DraftPicks(ctx context.Context, draftID model.DraftID) ([]model.Pick, error)

	// Draft returns descriptive metadata for the draft
	Draft(ctx context.Context, draftID model.DraftID) (*model.DraftInfo, error)

	// Players returns the full NFL player dump keyed by player identifier
	Players(ctx context.Context) (map[string]Player, error)
}

// Config holds client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns the production Sleeper settings
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// HTTPClient implements Client over net/http
type HTTPClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)

// New creates a Client. Each request is bounded by cfg.Timeout.
func New(cfg Config) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
	}
}

// NewForTest creates a Client pointed at a fake server
func NewForTest(baseURL string) *HTTPClient {
	return New(Config{BaseURL: baseURL, Timeout: 2 * time.Second})
}

// BaseURL returns the API root the client talks to
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) DraftPicks(ctx context.Context, draftID model.DraftID) ([]model.Pick, error) {
	if draftID == "" {
		return nil, model.ErrInvalidDraftID
	}
	u := fmt.Sprintf("%s/v1/draft/%s/picks", c.baseURL, url.PathEscape(string(draftID)))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	// A JSON null or object decodes without error into a slice, so check the shape first
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &FetchError{Kind: KindPayload, URL: u, Err: errors.New("expected a JSON array of picks")}
	}

	var raw []pick
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &FetchError{Kind: KindPayload, URL: u, Err: err}
	}

	picks := make([]model.Pick, len(raw))
	for i, p := range raw {
		picks[i] = p.toModel()
	}
	return picks, nil
}

func (c *HTTPClient) Draft(ctx context.Context, draftID model.DraftID) (*model.DraftInfo, error) {
	if draftID == "" {
		return nil, model.ErrInvalidDraftID
	}
	u := fmt.Sprintf("%s/v1/draft/%s", c.baseURL, url.PathEscape(string(draftID)))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var raw *draft
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &FetchError{Kind: KindPayload, URL: u, Err: err}
	}
	// Sleeper answers unknown drafts with 200 and a null body
	if raw == nil {
		return nil, &FetchError{Kind: KindPayload, URL: u, Err: errors.New("draft not found")}
	}

	info := raw.toModel()
	if info.DraftID == "" {
		info.DraftID = draftID
	}
	return &info, nil
}

func (c *HTTPClient) Players(ctx context.Context) (map[string]Player, error) {
	u := fmt.Sprintf("%s/v1/players/nfl", c.baseURL)

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var players map[string]Player
	if err := json.Unmarshal(body, &players); err != nil {
		return nil, &FetchError{Kind: KindPayload, URL: u, Err: err}
	}
	if players == nil {
		return nil, &FetchError{Kind: KindPayload, URL: u, Err: errors.New("expected a JSON object of players")}
	}
	return players, nil
}

// get performs one bounded GET and returns the body of a 2xx response
func (c *HTTPClient) get(ctx context.Context, u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{Kind: KindStatus, URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, URL: u, Err: err}
	}
	return body, nil
}
