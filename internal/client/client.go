package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Config holds the API client configuration
type Config struct {
	BaseURL string // e.g. http://localhost:8080
	Token   string // session token, empty for public endpoints
}

// APIError is a non-2xx response from the coach API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coach API error (status %d): %s", e.StatusCode, e.Message)
}

// envelope is the {"success", "data", "error"} wrapper used by the API
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Client is a thin HTTP client for the coach API. Generation calls have no
// timeout; cancel through ctx.
type Client struct {
	config     Config
	httpClient *http.Client
}

// New creates a new API client
func New(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		config:     cfg,
		httpClient: &http.Client{},
	}
}

// WithToken returns a copy of the client that authenticates with token
func (c *Client) WithToken(token string) *Client {
	cfg := c.config
	cfg.Token = token
	return &Client{config: cfg, httpClient: c.httpClient}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	return req, nil
}

// send executes the request and returns the raw body of a 2xx response
func (c *Client) send(req *http.Request) ([]byte, *http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		message := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &env) == nil && env.Error != "" {
			message = env.Error
		}
		return nil, resp, &APIError{StatusCode: resp.StatusCode, Message: message}
	}
	return respBody, resp, nil
}

// do sends a JSON request and decodes the envelope's data into out (if non-nil)
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	respBody, _, err := c.send(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}
