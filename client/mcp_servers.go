package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/toolgate/toolgate/pkg/types"
)

// AddServer registers a backend MCP server with the gateway and returns
// the result of the scoped tool discovery run against it.
func (c *Client) AddServer(input *types.RegisterServerInput) (*types.AddServerResult, error) {
	u, _ := c.constructAPIEndpoint("/mcp/add_server")

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal server registration: %w", err)
	}

	httpReq, err := c.newRequest(http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, c.parseErrorResponse(resp)
	}

	var result types.AddServerResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// ListServers returns all backend MCP servers registered with the gateway.
func (c *Client) ListServers() ([]*types.McpServer, error) {
	u, _ := c.constructAPIEndpoint("/mcp/servers")

	httpReq, err := c.newRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var servers []*types.McpServer
	if err := json.NewDecoder(resp.Body).Decode(&servers); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return servers, nil
}

// DeregisterServer removes a backend MCP server registration from the
// gateway along with its tools.
func (c *Client) DeregisterServer(name string) error {
	u, _ := c.constructAPIEndpoint("/mcp/servers/" + name)

	httpReq, err := c.newRequest(http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return c.parseErrorResponse(resp)
	}

	return nil
}
