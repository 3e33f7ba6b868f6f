package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/toolgate/toolgate/pkg/types"
)

func TestDiscoverTools(t *testing.T) {
	t.Parallel()

	t.Run("successful discovery", func(t *testing.T) {
		expectedResponse := &types.DiscoverResponse{
			Tools: []types.ToolMatch{
				{ToolID: "math_calculator", Name: "calculator", Score: 0.92, Server: "math"},
			},
			QueryID: "0b96b286-9e9c-4e3e-8f55-867b7181e9c7",
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("Expected POST method, got %s", r.Method)
			}
			if !strings.HasSuffix(r.URL.Path, "/tools/discover") {
				t.Errorf("Expected path to end with /tools/discover, got %s", r.URL.Path)
			}

			var req types.DiscoverRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("Failed to decode request body: %v", err)
			}
			if req.Query != "perform a calculation" {
				t.Errorf("Expected query 'perform a calculation', got %s", req.Query)
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(expectedResponse)
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		resp, err := c.DiscoverTools(&types.DiscoverRequest{Query: "perform a calculation"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(resp.Tools) != 1 || resp.Tools[0].ToolID != "math_calculator" {
			t.Errorf("Unexpected discovery result: %+v", resp.Tools)
		}
	})

	t.Run("validation error surfaces detail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail": "query is required"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		_, err := c.DiscoverTools(&types.DiscoverRequest{})
		if err == nil {
			t.Fatal("Expected an error, got nil")
		}
		if !strings.Contains(err.Error(), "query is required") {
			t.Errorf("Expected error to contain detail, got: %v", err)
		}
	})
}

func TestProvisionTools(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/tools/provision") {
			t.Errorf("Expected path to end with /tools/provision, got %s", r.URL.Path)
		}

		var req types.ProvisionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if req.ContextTokens != 200 {
			t.Errorf("Expected context_tokens 200, got %d", req.ContextTokens)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&types.ProvisionResponse{
			Tools:    []types.ProvisionedTool{{Name: "s_a", TokenCount: 100}},
			Metadata: types.ProvisionMetadata{TotalTokens: 100, GatingApplied: true},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	resp, err := c.ProvisionTools(&types.ProvisionRequest{
		ToolIDs:       []string{"s_a", "s_b"},
		ContextTokens: 200,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(resp.Tools) != 1 || resp.Metadata.TotalTokens != 100 {
		t.Errorf("Unexpected provision response: %+v", resp)
	}
}

func TestExecuteTool(t *testing.T) {
	t.Parallel()

	t.Run("successful execution", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/proxy/execute") {
				t.Errorf("Expected path to end with /proxy/execute, got %s", r.URL.Path)
			}

			var req types.ExecuteRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("Failed to decode request body: %v", err)
			}
			if req.ToolID != "calc_add" {
				t.Errorf("Expected tool_id 'calc_add', got %s", req.ToolID)
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(&types.ExecuteResponse{
				Result: &types.ToolInvokeResult{
					Content: []map[string]any{{"type": "text", "text": "3"}},
				},
			})
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		result, err := c.ExecuteTool(&types.ExecuteRequest{
			ToolID:    "calc_add",
			Arguments: map[string]any{"a": 1, "b": 2},
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(result.Content) != 1 || result.Content[0]["text"] != "3" {
			t.Errorf("Unexpected execute result: %+v", result)
		}
	})

	t.Run("not provisioned error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail": "tool calc_add is not provisioned"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		_, err := c.ExecuteTool(&types.ExecuteRequest{ToolID: "calc_add"})
		if err == nil {
			t.Fatal("Expected an error, got nil")
		}
		if !strings.Contains(err.Error(), "not provisioned") {
			t.Errorf("Expected error to contain detail, got: %v", err)
		}
	})
}

func TestGetExecutionInfo(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/proxy/execute/info") {
			t.Errorf("Expected path to end with /proxy/execute/info, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&types.ExecutionInfo{
			ToolName: "add",
			Server:   "calc",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	info, err := c.GetExecutionInfo(&types.ExecuteRequest{ToolID: "calc_add"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.ToolName != "add" || info.Server != "calc" {
		t.Errorf("Unexpected execution info: %+v", info)
	}
}

func TestAddServer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/mcp/add_server") {
			t.Errorf("Expected path to end with /mcp/add_server, got %s", r.URL.Path)
		}

		var input types.RegisterServerInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if input.Name != "exa" || input.Transport != "streamable_http" {
			t.Errorf("Unexpected registration input: %+v", input)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(&types.AddServerResult{
			Name:      "exa",
			Tools:     []string{"exa_web_search"},
			ToolCount: 1,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	result, err := c.AddServer(&types.RegisterServerInput{
		Name:      "exa",
		Transport: "streamable_http",
		URL:       "https://example.com/mcp",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.ToolCount != 1 || result.Tools[0] != "exa_web_search" {
		t.Errorf("Unexpected add server result: %+v", result)
	}
}

func TestListServers(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET method, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]*types.McpServer{
			{Name: "exa", Transport: "streamable_http", URL: "https://example.com/mcp"},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	servers, err := c.ListServers()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(servers) != 1 || servers[0].Name != "exa" {
		t.Errorf("Unexpected server list: %+v", servers)
	}
}

func TestDeregisterServer(t *testing.T) {
	t.Parallel()

	t.Run("successful deregistration", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("Expected DELETE method, got %s", r.Method)
			}
			if !strings.HasSuffix(r.URL.Path, "/mcp/servers/exa") {
				t.Errorf("Expected path to end with /mcp/servers/exa, got %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		if err := c.DeregisterServer("exa"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	})

	t.Run("unknown server", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": "mcp server not found"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, nil)
		err := c.DeregisterServer("nope")
		if err == nil {
			t.Fatal("Expected an error, got nil")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("Expected error to contain detail, got: %v", err)
		}
	})
}

func TestRegisterTool(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/tools/register") {
			t.Errorf("Expected path to end with /tools/register, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(&types.RegisterToolResult{
			Status: "success",
			ToolID: "nlp_summarize",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	result, err := c.RegisterTool(&types.RegisterToolInput{
		Name:   "summarize",
		Server: "nlp",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.ToolID != "nlp_summarize" {
		t.Errorf("Unexpected tool id: %s", result.ToolID)
	}
}

func TestClearTools(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE method, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(&types.ClearResult{
			Status:  "success",
			Message: "removed 3 tools from the repository",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	result, err := c.ClearTools()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Status != "success" {
		t.Errorf("Unexpected clear result: %+v", result)
	}
}
