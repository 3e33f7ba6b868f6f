package proxy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/toolgate/toolgate/internal/registry"
	"github.com/toolgate/toolgate/pkg/types"
	"github.com/toolgate/toolgate/pkg/version"
)

// MCPProxy exposes the provisioned tool set over the MCP protocol, so MCP
// clients can connect to toolgate itself instead of talking to every
// backend server directly. Only provisioned tools are visible; calls are
// routed through the execution router, so the provisioning gate and usage
// accounting apply to MCP clients exactly as they do to the HTTP API.
type MCPProxy struct {
	router *Router
	server *server.MCPServer
	logger *zap.Logger
}

// NewMCPProxy creates the MCP-facing proxy surface and wires it to the
// router's provision callbacks so the visible tool set tracks the
// provisioned set.
func NewMCPProxy(router *Router, logger *zap.Logger) *MCPProxy {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &MCPProxy{
		router: router,
		logger: logger,
		server: server.NewMCPServer(
			"Toolgate Proxy MCP Server",
			version.GetVersion(),
			server.WithToolCapabilities(true),
		),
	}

	router.SetProvisionCallbacks(p.addTool, p.removeTools)

	// tools provisioned before the proxy was constructed
	for _, id := range router.ProvisionedIDs() {
		if tool, ok := router.registry.Get(id); ok {
			p.addTool(tool)
		}
	}
	return p
}

// Server returns the underlying MCP server for mounting on a transport.
func (p *MCPProxy) Server() *server.MCPServer {
	return p.server
}

func (p *MCPProxy) addTool(tool *registry.Tool) {
	mcpTool, err := convertRecordToMcpTool(tool)
	if err != nil {
		p.logger.Warn("failed to expose tool over MCP",
			zap.String("tool_id", tool.ID),
			zap.Error(err),
		)
		return
	}
	p.server.AddTool(mcpTool, p.toolCallHandler)
}

func (p *MCPProxy) removeTools(toolIDs ...string) {
	p.server.DeleteTools(toolIDs...)
}

// toolCallHandler routes an incoming MCP tool call through the execution
// router. The tool name on the wire is the composite id, so the router's
// id splitting resolves the backend server.
func (p *MCPProxy) toolCallHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := p.router.Execute(ctx, req.Params.Name, req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return convertInvokeResultToMcp(result)
}

// convertRecordToMcpTool converts a repository record into an mcp.Tool
// named by its composite id, so calls arriving at the proxy carry enough
// information to route.
func convertRecordToMcpTool(t *registry.Tool) (mcp.Tool, error) {
	schemaJSON, err := json.Marshal(t.InputSchema())
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("failed to marshal input schema for tool %s: %w", t.ID, err)
	}
	return mcp.NewToolWithRawSchema(t.ID, t.Description, schemaJSON), nil
}

// convertInvokeResultToMcp converts the API-shaped invocation result back
// into an mcp.CallToolResult for MCP clients.
func convertInvokeResultToMcp(res *types.ToolInvokeResult) (*mcp.CallToolResult, error) {
	content := make([]mcp.Content, 0, len(res.Content))
	for i, item := range res.Content {
		c, err := mcp.ParseContent(item)
		if err != nil {
			return nil, fmt.Errorf("failed to parse content item %d: %w", i, err)
		}
		content = append(content, c)
	}

	result := &mcp.CallToolResult{
		Content:           content,
		IsError:           res.IsError,
		StructuredContent: res.StructuredContent,
	}
	if len(res.Meta) > 0 {
		result.Meta = &mcp.Meta{AdditionalFields: res.Meta}
	}
	return result, nil
}
