package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/standardbeagle/canwork/internal/canwork"
)

// Client queries a running CheckServer
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a client for the server at baseURL (e.g. http://localhost:8080)
func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// IsServerRunning checks if the server is accessible
func (c *Client) IsServerRunning(ctx context.Context) bool {
	_, err := c.Health(ctx)
	return err == nil
}

// Health fetches /healthz
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := c.do(req, &health); err != nil {
		return nil, fmt.Errorf("failed to get health: %w", err)
	}
	return &health, nil
}

// Check asks the server whether file can be worked on
func (c *Client) Check(ctx context.Context, file string) (*canwork.Report, error) {
	u := c.baseURL + "/canwork?" + url.Values{"file": {file}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	var report canwork.Report
	if err := c.do(req, &report); err != nil {
		return nil, fmt.Errorf("failed to check %q: %w", file, err)
	}
	return &report, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
