// Package client provides a typed Go SDK for the auditlens REST API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Actor headers understood by the server.
const (
	headerActorID   = "X-Actor-Id"
	headerActorName = "X-Actor-Name"
	headerActorRole = "X-Actor-Role"
)

// Client is the top-level auditlens API client.
type Client struct {
	baseURL    string
	actor      Actor
	httpClient *http.Client

	Dashboards *DashboardService
	Logs       *LogService
}

// Actor identifies the caller; it is attributed on export self-logs.
type Actor struct {
	ID   string
	Name string
	Role string
}

// Option configures a Client.
type Option func(*Client)

// WithActor sets the identity headers sent on every request.
func WithActor(a Actor) Option {
	return func(c *Client) { c.actor = a }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates an auditlens client for the given base URL (e.g. "http://localhost:3040").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	c.Dashboards = &DashboardService{c: c}
	c.Logs = &LogService{c: c}
	return c
}

// Health returns the liveness check response.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.send(ctx, "/api/v1/health", nil)
	if err != nil {
		return nil, err
	}
	if resp.status >= 400 {
		return nil, parseAPIError(resp.status, resp.body)
	}

	var out HealthResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// Ready returns the readiness report. A not-ready server still yields the
// report; Ready is false and Checks names the failing dependency.
func (c *Client) Ready(ctx context.Context) (*ReadyResponse, error) {
	resp, err := c.send(ctx, "/api/v1/ready", nil)
	if err != nil {
		return nil, err
	}

	var out ReadyResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		if resp.status >= 400 {
			return nil, parseAPIError(resp.status, resp.body)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	out.Ready = resp.status == http.StatusOK
	return &out, nil
}

type rawResponse struct {
	status int
	header http.Header
	body   []byte
}

// send executes a GET request and returns the raw response.
func (c *Client) send(ctx context.Context, path string, params url.Values) (*rawResponse, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	setHeader(req, headerActorID, c.actor.ID)
	setHeader(req, headerActorName, c.actor.Name)
	setHeader(req, headerActorRole, c.actor.Role)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &rawResponse{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

// get executes a GET request and decodes the data member of the success
// envelope into result.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	resp, err := c.send(ctx, path, params)
	if err != nil {
		return err
	}
	if resp.status >= 400 {
		return parseAPIError(resp.status, resp.body)
	}

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return parseAPIError(resp.status, resp.body)
	}

	if raw, ok := result.(*json.RawMessage); ok {
		*raw = env.Data
		return nil
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func setHeader(req *http.Request, name, value string) {
	if value != "" {
		req.Header.Set(name, value)
	}
}
