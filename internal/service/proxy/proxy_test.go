package proxy

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolgate/toolgate/internal/registry"
	"github.com/toolgate/toolgate/pkg/types"
)

// fakeBackends is an in-memory stand-in for the upstream client registry.
type fakeBackends struct {
	servers []string
	tools   map[string][]mcp.Tool

	listErr map[string]error
	callErr error

	callCount  int
	lastServer string
	lastTool   string
	lastArgs   map[string]any
}

func (f *fakeBackends) ServerNames() ([]string, error) {
	return f.servers, nil
}

func (f *fakeBackends) ListTools(_ context.Context, server string) ([]mcp.Tool, error) {
	if err := f.listErr[server]; err != nil {
		return nil, err
	}
	tools, ok := f.tools[server]
	if !ok {
		return nil, fmt.Errorf("server %s not found", server)
	}
	return tools, nil
}

func (f *fakeBackends) CallTool(_ context.Context, server, tool string, args map[string]any) (*types.ToolInvokeResult, error) {
	f.callCount++
	f.lastServer = server
	f.lastTool = tool
	f.lastArgs = args
	if f.callErr != nil {
		return nil, f.callErr
	}
	return &types.ToolInvokeResult{
		Content: []map[string]any{{"type": "text", "text": "ok"}},
	}, nil
}

func newTestRouter(t *testing.T, backends *fakeBackends) (*Router, *registry.ToolRegistry) {
	t.Helper()
	reg := registry.NewToolRegistry()
	r, err := NewRouter(&Config{
		Registry: reg,
		Backends: backends,
		Store:    NewMemoryProvisionStore(),
	})
	require.NoError(t, err)
	return r, reg
}

func registerTool(t *testing.T, reg *registry.ToolRegistry, id, desc string, tokens int) {
	t.Helper()
	server, name, ok := registry.SplitToolID(id)
	require.True(t, ok)
	require.NoError(t, reg.Add(&registry.Tool{
		ID:              id,
		Name:            name,
		Description:     desc,
		EstimatedTokens: tokens,
		Server:          server,
	}))
}

func TestExecuteRequiresProvisioning(t *testing.T) {
	backends := &fakeBackends{}
	r, reg := newTestRouter(t, backends)
	registerTool(t, reg, "calc_add", "Adds two numbers.", 40)

	_, err := r.Execute(context.Background(), "calc_add", map[string]any{"a": 1})

	var notProvisioned *NotProvisionedError
	require.ErrorAs(t, err, &notProvisioned)
	assert.Equal(t, "calc_add", notProvisioned.ToolID)
	assert.Contains(t, notProvisioned.Error(), "calc_add")
	assert.Zero(t, backends.callCount, "backend must not be contacted for unprovisioned tools")
}

func TestExecuteRoutesToBackend(t *testing.T) {
	backends := &fakeBackends{}
	r, reg := newTestRouter(t, backends)
	registerTool(t, reg, "exa_research_paper_search", "Searches research papers.", 120)

	r.Provision("exa_research_paper_search")
	result, err := r.Execute(context.Background(), "exa_research_paper_search", map[string]any{"query": "go"})
	require.NoError(t, err)
	require.NotNil(t, result)

	// split on the first underscore only
	assert.Equal(t, "exa", backends.lastServer)
	assert.Equal(t, "research_paper_search", backends.lastTool)
	assert.Equal(t, map[string]any{"query": "go"}, backends.lastArgs)
}

func TestExecuteInvalidToolID(t *testing.T) {
	r, _ := newTestRouter(t, &fakeBackends{})

	r.Provision("noseparator")
	_, err := r.Execute(context.Background(), "noseparator", nil)

	var invalid *InvalidToolIDError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "noseparator", invalid.ToolID)
}

func TestExecuteRecordsUsageOnSuccessOnly(t *testing.T) {
	backends := &fakeBackends{}
	r, reg := newTestRouter(t, backends)
	registerTool(t, reg, "calc_add", "Adds two numbers.", 40)
	r.Provision("calc_add")

	_, err := r.Execute(context.Background(), "calc_add", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reg.UsageCount("calc_add"))

	backends.callErr = errors.New("backend exploded")
	_, err = r.Execute(context.Background(), "calc_add", nil)
	require.Error(t, err)
	assert.Equal(t, uint64(1), reg.UsageCount("calc_add"), "failed executions must not count as usage")
}

func TestExecuteBackendErrorPropagated(t *testing.T) {
	backendErr := errors.New("upstream timeout")
	backends := &fakeBackends{callErr: backendErr}
	r, reg := newTestRouter(t, backends)
	registerTool(t, reg, "calc_add", "Adds two numbers.", 40)
	r.Provision("calc_add")

	_, err := r.Execute(context.Background(), "calc_add", nil)
	assert.ErrorIs(t, err, backendErr)
}

func TestUnprovisionClosesGate(t *testing.T) {
	backends := &fakeBackends{}
	r, reg := newTestRouter(t, backends)
	registerTool(t, reg, "calc_add", "Adds two numbers.", 40)

	r.Provision("calc_add")
	require.True(t, r.IsProvisioned("calc_add"))

	r.Unprovision("calc_add")
	assert.False(t, r.IsProvisioned("calc_add"))

	_, err := r.Execute(context.Background(), "calc_add", nil)
	var notProvisioned *NotProvisionedError
	assert.ErrorAs(t, err, &notProvisioned)
}

func TestProvisionUnregisteredToolAllowed(t *testing.T) {
	// provisioning is decoupled from the repository: an id may be
	// provisioned before discovery has seen it
	r, _ := newTestRouter(t, &fakeBackends{})

	r.Provision("future_tool")
	assert.True(t, r.IsProvisioned("future_tool"))
	assert.Contains(t, r.ProvisionedIDs(), "future_tool")
}

func TestProvisionCallbacks(t *testing.T) {
	r, reg := newTestRouter(t, &fakeBackends{})
	registerTool(t, reg, "calc_add", "Adds two numbers.", 40)

	var added []string
	var removed []string
	r.SetProvisionCallbacks(
		func(tool *registry.Tool) { added = append(added, tool.ID) },
		func(toolIDs ...string) { removed = append(removed, toolIDs...) },
	)

	r.Provision("calc_add")
	r.Provision("ghost_tool") // not in the repository, no callback
	r.Unprovision("calc_add")

	assert.Equal(t, []string{"calc_add"}, added)
	assert.Equal(t, []string{"calc_add"}, removed)
}

func TestExecutionInfo(t *testing.T) {
	backends := &fakeBackends{}
	r, reg := newTestRouter(t, backends)
	require.NoError(t, reg.Add(&registry.Tool{
		ID:              "exa_web_search",
		Name:            "web_search",
		Description:     "Searches the web for pages. Supports pagination.",
		Tags:            []string{"search", "web"},
		EstimatedTokens: 150,
		Server:          "exa",
	}))

	info, err := r.ExecutionInfo("exa_web_search", map[string]any{"query": "golang", "limit": 3})
	require.NoError(t, err)

	assert.Equal(t, "web_search", info.ToolName)
	assert.Equal(t, "exa", info.Server)
	assert.Equal(t, 150, info.EstimatedTokens)
	assert.Equal(t, []string{"search", "web"}, info.Tags)
	assert.Contains(t, info.ActionSummary, "web_search")
	assert.Contains(t, info.ActionSummary, "2 arguments")
	assert.Contains(t, info.ActionSummary, "Searches the web for pages")
	assert.NotContains(t, info.ActionSummary, "Supports pagination")
	assert.Zero(t, backends.callCount, "info must not contact the backend")
}

func TestExecutionInfoUnknownTool(t *testing.T) {
	r, _ := newTestRouter(t, &fakeBackends{})

	_, err := r.ExecutionInfo("nope_tool", nil)
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestExecutionInfoDoesNotRequireProvisioning(t *testing.T) {
	r, reg := newTestRouter(t, &fakeBackends{})
	registerTool(t, reg, "calc_add", "Adds two numbers.", 40)

	_, err := r.ExecutionInfo("calc_add", nil)
	assert.NoError(t, err)
}

func TestDiscoverServerTools(t *testing.T) {
	backends := &fakeBackends{
		servers: []string{"exa"},
		tools: map[string][]mcp.Tool{
			"exa": {
				{
					Name:        "web_search",
					Description: "Search the web and fetch matching pages.",
					InputSchema: mcp.ToolInputSchema{
						Type:       "object",
						Properties: map[string]any{"query": map[string]any{"type": "string"}},
					},
				},
				{
					Name:        "read_file",
					Description: "Read a file from the workspace directory.",
					InputSchema: mcp.ToolInputSchema{Type: "object"},
				},
			},
		},
	}
	r, reg := newTestRouter(t, backends)

	ids, err := r.DiscoverServerTools(context.Background(), "exa")
	require.NoError(t, err)
	assert.Equal(t, []string{"exa_web_search", "exa_read_file"}, ids)

	tool, ok := reg.Get("exa_web_search")
	require.True(t, ok)
	assert.Equal(t, "web_search", tool.Name)
	assert.Equal(t, "exa", tool.Server)
	assert.Contains(t, tool.Tags, "search")
	assert.Contains(t, tool.Tags, "web")
	assert.GreaterOrEqual(t, tool.EstimatedTokens, 1)

	fileTool, ok := reg.Get("exa_read_file")
	require.True(t, ok)
	assert.Contains(t, fileTool.Tags, "file")
	assert.Contains(t, fileTool.Tags, "read")
}

func TestDiscoverAllToolsSkipsFailingServer(t *testing.T) {
	backends := &fakeBackends{
		servers: []string{"good", "dead"},
		tools: map[string][]mcp.Tool{
			"good": {{Name: "ping", Description: "Ping.", InputSchema: mcp.ToolInputSchema{Type: "object"}}},
		},
		listErr: map[string]error{"dead": errors.New("connection refused")},
	}
	r, _ := newTestRouter(t, backends)

	discovered, err := r.DiscoverAllTools(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"good_ping"}, discovered["good"])
	assert.NotContains(t, discovered, "dead")
}

func TestDeriveTags(t *testing.T) {
	tests := []struct {
		name        string
		toolName    string
		description string
		want        []string
	}{
		{"search tool", "web_search", "Search the internet", []string{"search", "web"}},
		{"file tool", "list_dir", "List files in a directory", []string{"file"}},
		{"no match", "frobnicate", "Does something obscure", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveTags(tt.toolName, tt.description)
			for _, tag := range tt.want {
				assert.Contains(t, got, tag)
			}
			if tt.want == nil {
				assert.Empty(t, got)
			}
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	short := EstimateTokens("add", "Adds numbers.", []byte(`{"type":"object"}`))
	long := EstimateTokens("add", "Adds two numbers together and returns the arithmetic sum of both operands as a result value.", []byte(`{"type":"object"}`))

	assert.GreaterOrEqual(t, short, 1)
	assert.Greater(t, long, short, "longer descriptions must cost more tokens")

	bigSchema := EstimateTokens("add", "Adds numbers.", make([]byte, 4096))
	assert.Greater(t, bigSchema, short, "larger schemas must cost more tokens")
}

func TestMemoryProvisionStore(t *testing.T) {
	store := NewMemoryProvisionStore()

	assert.False(t, store.IsProvisioned("a_b"))
	store.Provision("a_b")
	store.Provision("a_b") // idempotent
	assert.True(t, store.IsProvisioned("a_b"))
	assert.Equal(t, []string{"a_b"}, store.List())

	store.Unprovision("a_b")
	store.Unprovision("a_b") // idempotent
	assert.False(t, store.IsProvisioned("a_b"))
	assert.Empty(t, store.List())
}
