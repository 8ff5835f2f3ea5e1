package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// CredentialSource supplies the bearer token for authenticated calls. The
// session store implements it; tests use a literal.
type CredentialSource interface {
	AccessToken() (string, error)
}

// StaticToken is a CredentialSource holding a fixed token.
type StaticToken string

func (t StaticToken) AccessToken() (string, error) { return string(t), nil }

// Config holds the knobs the server config section exposes.
type Config struct {
	BaseURL        string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
}

// DefaultConfig returns the production endpoint with conservative timeouts.
// Assistant replies can take a while, so the overall timeout is much longer
// than the dial timeout.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		ConnectTimeout: 10 * time.Second,
		RequestTimeout: 60 * time.Second,
	}
}

// Client talks to the Eva backend. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialSource
}

// New creates a client. creds may be nil for a client that only performs
// unauthenticated calls (auth exchange, health).
func New(cfg Config, creds CredentialSource) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		creds:   creds,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: cfg.ConnectTimeout,
				}).DialContext,
				TLSHandshakeTimeout: cfg.ConnectTimeout,
			},
		},
	}
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

// do issues one JSON request. in may be nil for bodyless methods; out may be
// nil when the response body is irrelevant.
func (c *Client) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if c.creds == nil {
			return fmt.Errorf("no credential source configured")
		}
		token, err := c.creds.AccessToken()
		if err != nil {
			return fmt.Errorf("failed to read access token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return newAPIError(resp.StatusCode, eb.Detail)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
