// Package proxy implements toolgate's execution router: it resolves
// composite tool ids back to their backend servers, enforces the
// provisioning gate, and dispatches calls to the client registry.
package proxy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/toolgate/toolgate/internal/registry"
	"github.com/toolgate/toolgate/internal/telemetry"
	"github.com/toolgate/toolgate/pkg/types"
)

// Backends is the client registry contract the router depends on.
// It is implemented by the upstream package; tests substitute fakes.
type Backends interface {
	// ServerNames returns the names of all registered backend servers.
	ServerNames() ([]string, error)

	// ListTools fetches the live tool list of a backend server.
	ListTools(ctx context.Context, server string) ([]mcp.Tool, error)

	// CallTool invokes a tool on a backend server. Results and errors are
	// propagated unchanged.
	CallTool(ctx context.Context, server, tool string, args map[string]any) (*types.ToolInvokeResult, error)
}

// Config holds the parameters for constructing a Router.
type Config struct {
	Registry *registry.ToolRegistry
	Backends Backends

	// Store is the provisioned-set implementation. Defaults to the
	// process-wide in-memory store.
	Store ProvisionStore

	Logger  *zap.Logger
	Metrics telemetry.CustomMetrics
}

// Router owns the provisioned set and routes tool executions to backends.
type Router struct {
	registry *registry.ToolRegistry
	backends Backends
	store    ProvisionStore
	logger   *zap.Logger
	metrics  telemetry.CustomMetrics

	// onProvision/onUnprovision are invoked after the provisioned set
	// changes. The API server uses them to keep the MCP proxy surface in
	// sync. Initialized to no-ops.
	onProvision   func(tool *registry.Tool)
	onUnprovision func(toolIDs ...string)
}

// NewRouter creates an execution router.
func NewRouter(c *Config) (*Router, error) {
	if c.Registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if c.Backends == nil {
		return nil, fmt.Errorf("backends client registry is required")
	}
	store := c.Store
	if store == nil {
		store = NewMemoryProvisionStore()
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := c.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopCustomMetrics()
	}
	return &Router{
		registry:      c.Registry,
		backends:      c.Backends,
		store:         store,
		logger:        logger,
		metrics:       metrics,
		onProvision:   func(*registry.Tool) {},
		onUnprovision: func(...string) {},
	}, nil
}

// SetProvisionCallbacks registers hooks called after the provisioned set
// changes. The provision hook receives the repository record when one
// exists; ids provisioned without registration do not trigger it.
func (r *Router) SetProvisionCallbacks(onProvision func(tool *registry.Tool), onUnprovision func(toolIDs ...string)) {
	if onProvision != nil {
		r.onProvision = onProvision
	}
	if onUnprovision != nil {
		r.onUnprovision = onUnprovision
	}
}

// Provision adds a tool id to the provisioned set.
func (r *Router) Provision(toolID string) {
	r.store.Provision(toolID)
	if tool, ok := r.registry.Get(toolID); ok {
		r.onProvision(tool)
	}
	r.logger.Debug("provisioned tool", zap.String("tool_id", toolID))
}

// Unprovision removes a tool id from the provisioned set.
func (r *Router) Unprovision(toolID string) {
	r.store.Unprovision(toolID)
	r.onUnprovision(toolID)
	r.logger.Debug("unprovisioned tool", zap.String("tool_id", toolID))
}

// IsProvisioned reports whether a tool id may be executed.
func (r *Router) IsProvisioned(toolID string) bool {
	return r.store.IsProvisioned(toolID)
}

// ProvisionedIDs returns a snapshot of the provisioned set.
func (r *Router) ProvisionedIDs() []string {
	return r.store.List()
}

// Execute invokes a provisioned tool on its backend server.
//
// The provisioning gate is checked first, then the composite id is split on
// its first underscore into (server, tool name), then the call is delegated
// to the client registry. Whatever the backend returns or raises is
// propagated unchanged; the router adds no retry or timeout logic. The
// context carries cancellation: a disconnected caller aborts the in-flight
// backend call without touching the provisioned set.
func (r *Router) Execute(ctx context.Context, toolID string, args map[string]any) (*types.ToolInvokeResult, error) {
	if !r.store.IsProvisioned(toolID) {
		return nil, &NotProvisionedError{ToolID: toolID}
	}

	server, toolName, ok := registry.SplitToolID(toolID)
	if !ok {
		return nil, &InvalidToolIDError{ToolID: toolID}
	}

	started := time.Now()
	result, err := r.backends.CallTool(ctx, server, toolName, args)
	if err != nil {
		r.metrics.RecordToolCall(ctx, server, toolName, telemetry.ToolCallOutcomeError, time.Since(started))
		r.logger.Warn("tool execution failed",
			zap.String("tool_id", toolID),
			zap.String("server", server),
			zap.Error(err),
		)
		return nil, err
	}

	r.metrics.RecordToolCall(ctx, server, toolName, telemetry.ToolCallOutcomeSuccess, time.Since(started))
	// usage counts feed the popularity ranking; only successful
	// executions count as real usage
	r.registry.RecordUsage(toolID)
	return result, nil
}

// ExecutionInfo returns a side-effect-free preview of what executing the
// tool would do. The tool must exist in the repository, but does not need
// to be provisioned; the backend is never contacted.
func (r *Router) ExecutionInfo(toolID string, args map[string]any) (*types.ExecutionInfo, error) {
	tool, ok := r.registry.Get(toolID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, toolID)
	}

	return &types.ExecutionInfo{
		ToolName:        tool.Name,
		Server:          tool.Server,
		Description:     tool.Description,
		ActionSummary:   actionSummary(tool, args),
		EstimatedTokens: tool.EstimatedTokens,
		Tags:            tool.Tags,
	}, nil
}

// actionSummary synthesizes a short human-readable sentence describing what
// a call would do, templated from the tool's description.
func actionSummary(tool *registry.Tool, args map[string]any) string {
	desc := firstSentence(tool.Description)
	if desc == "" {
		desc = "no description available"
	}

	argPart := "no arguments"
	switch len(args) {
	case 0:
	case 1:
		argPart = "1 argument"
	default:
		argPart = fmt.Sprintf("%d arguments", len(args))
	}

	return fmt.Sprintf("Would call %s on server %q with %s: %s", tool.Name, tool.Server, argPart, desc)
}

// firstSentence truncates text at the first sentence boundary.
func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, ".!?\n"); i > 0 {
		return text[:i]
	}
	return text
}
