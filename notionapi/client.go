// Package notionapi is a minimal client for the Notion REST API: paginated
// block-children listing, recursive tree fetch, single-block retrieval,
// database queries, and fresh signed-URL resolution for expired media.
//
// Only the narrow surface the mission pipeline depends on is implemented;
// authentication is an opaque bearer credential supplied at construction.
package notionapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoAPIKey is returned by New when no credential is configured.
// This is a configuration error: it fires before any network activity.
var ErrNoAPIKey = errors.New("notionapi: API key is not configured")

const defaultBaseURL = "https://api.notion.com/v1"

// Config configures the client.
type Config struct {
	// APIKey is the Notion integration token. Required.
	APIKey string
	// BaseURL overrides the API endpoint (tests). Default: the public API.
	BaseURL string
	// Version is the Notion-Version header. Default: "2022-06-28".
	Version string
	// Timeout is the per-request HTTP timeout. Default: 30s.
	Timeout time.Duration
	// MaxBytes caps response body reads. Default: 10MB.
	MaxBytes int64
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Version == "" {
		c.Version = "2022-06-28"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
}

// Client talks to the Notion API.
type Client struct {
	http   *http.Client
	config Config
}

// New creates a Client. Returns ErrNoAPIKey when no credential is given.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	cfg.defaults()
	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		config: cfg,
	}, nil
}

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notionapi: http %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("notionapi: http %d", e.StatusCode)
}

// do performs one API call and decodes the JSON response into out.
// body, when non-nil, is sent as a JSON request body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("notionapi: marshal body: %w", err)
		}
		rd = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, rd)
	if err != nil {
		return fmt.Errorf("notionapi: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Notion-Version", c.config.Version)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("notionapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBytes))
	if err != nil {
		return fmt.Errorf("notionapi: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr) // best effort; status alone is enough
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("notionapi: decode response: %w", err)
		}
	}
	return nil
}

// get performs a GET with query parameters.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, out)
}
