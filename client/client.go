// Package client provides a Go client for the toolgate HTTP API.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client talks to a toolgate gateway server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the gateway running at baseURL.
// If httpClient is nil, http.DefaultClient is used.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// constructAPIEndpoint returns the full URL for an API path.
func (c *Client) constructAPIEndpoint(path string) (string, error) {
	return url.JoinPath(c.baseURL, path)
}

// newRequest creates a new HTTP request against the gateway.
func (c *Client) newRequest(method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// parseErrorResponse extracts the error detail from a non-2xx response body.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("request failed with status %s", resp.Status)
	}

	var errResp struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Detail == nil {
		return fmt.Errorf("request failed with status %s: %s", resp.Status, string(body))
	}
	return fmt.Errorf("request failed with status %s: %v", resp.Status, errResp.Detail)
}
