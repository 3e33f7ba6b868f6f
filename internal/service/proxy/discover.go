package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/toolgate/toolgate/internal/registry"
)

// tagKeywords maps description keywords to category tags for auto-discovered
// tools. The table is fixed but trivially extensible; matching is
// case-insensitive substring on the tool's name and description.
var tagKeywords = map[string]string{
	"search":     "search",
	"query":      "search",
	"find":       "search",
	"file":       "file",
	"director":   "file", // directory, directories
	"read":       "read",
	"fetch":      "read",
	"get":        "read",
	"write":      "write",
	"create":     "write",
	"update":     "write",
	"delete":     "write",
	"browser":    "browser",
	"web":        "web",
	"http":       "web",
	"url":        "web",
	"database":   "database",
	"sql":        "database",
	"git":        "git",
	"commit":     "git",
	"mail":       "email",
	"email":      "email",
	"message":    "messaging",
	"chat":       "messaging",
	"calc":       "math",
	"math":       "math",
	"image":      "image",
	"screenshot": "image",
	"code":       "code",
	"execute":    "code",
	"time":       "time",
	"date":       "time",
}

const (
	// tokenEstimateBase is the fixed per-tool overhead of a wire
	// definition (name, framing, schema envelope).
	tokenEstimateBase = 20

	// tokensPerWord approximates LLM tokens per English word.
	tokensPerWord = 1.3

	// schemaBytesPerToken approximates LLM tokens from raw schema JSON.
	schemaBytesPerToken = 4
)

// deriveTags derives category tags from a tool's name and description via
// the fixed keyword table.
func deriveTags(name, description string) []string {
	text := strings.ToLower(name + " " + description)
	var tags []string
	seen := make(map[string]struct{})
	for keyword, tag := range tagKeywords {
		if !strings.Contains(text, keyword) {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// EstimateTokens estimates the LLM context cost of a tool's wire definition
// from its text length. Exactness is not required, only monotonic
// reasonableness: a longer description or schema never yields a smaller
// estimate.
func EstimateTokens(name, description string, schemaJSON []byte) int {
	words := len(strings.Fields(name)) + len(strings.Fields(description))
	estimate := tokenEstimateBase + int(float64(words)*tokensPerWord) + len(schemaJSON)/schemaBytesPerToken
	if estimate < 1 {
		estimate = 1
	}
	return estimate
}

// DiscoverServerTools fetches the live tool list of one backend server and
// upserts every tool into the repository. It returns the canonical ids of
// the discovered tools.
func (r *Router) DiscoverServerTools(ctx context.Context, server string) ([]string, error) {
	mcpTools, err := r.backends.ListTools(ctx, server)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools of MCP server %s: %w", server, err)
	}

	ids := make([]string, 0, len(mcpTools))
	for _, mcpTool := range mcpTools {
		tool, err := convertMcpToolToRecord(server, mcpTool)
		if err != nil {
			// a tool with an unusable schema should not sink the whole
			// discovery run
			r.logger.Warn("skipping tool with invalid schema",
				zap.String("server", server),
				zap.String("tool", mcpTool.GetName()),
				zap.Error(err),
			)
			continue
		}
		if err := r.registry.Add(tool); err != nil {
			r.logger.Warn("failed to register discovered tool",
				zap.String("tool_id", tool.ID),
				zap.Error(err),
			)
			continue
		}
		ids = append(ids, tool.ID)
	}

	r.logger.Info("discovered tools from MCP server",
		zap.String("server", server),
		zap.Int("count", len(ids)),
	)
	return ids, nil
}

// DiscoverAllTools runs DiscoverServerTools for every server known to the
// client registry. A failing server is logged and skipped so one dead
// backend cannot block discovery of the others.
func (r *Router) DiscoverAllTools(ctx context.Context) (map[string][]string, error) {
	servers, err := r.backends.ServerNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list MCP servers: %w", err)
	}

	discovered := make(map[string][]string, len(servers))
	for _, server := range servers {
		ids, err := r.DiscoverServerTools(ctx, server)
		if err != nil {
			r.logger.Warn("tool discovery failed for MCP server",
				zap.String("server", server),
				zap.Error(err),
			)
			continue
		}
		discovered[server] = ids
	}
	return discovered, nil
}

// convertMcpToolToRecord converts a live mcp.Tool into a repository record,
// synthesizing the canonical id, category tags and token estimate.
func convertMcpToolToRecord(server string, mcpTool mcp.Tool) (*registry.Tool, error) {
	schemaJSON, err := json.Marshal(mcpTool.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input schema: %w", err)
	}

	var params map[string]any
	if err := json.Unmarshal(schemaJSON, &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal input schema: %w", err)
	}

	name := mcpTool.GetName()
	return &registry.Tool{
		ID:              registry.MergeToolID(server, name),
		Name:            name,
		Description:     mcpTool.Description,
		Tags:            deriveTags(name, mcpTool.Description),
		Parameters:      params,
		EstimatedTokens: EstimateTokens(name, mcpTool.Description, schemaJSON),
		Server:          server,
	}, nil
}
