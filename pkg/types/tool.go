package types

import "time"

// ToolMatch is a single entry in a discovery result, ordered by score.
type ToolMatch struct {
	ToolID          string   `json:"tool_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Score           float64  `json:"score"`
	MatchedTags     []string `json:"matched_tags"`
	EstimatedTokens int      `json:"estimated_tokens"`
	Server          string   `json:"server"`
}

// DiscoverRequest is the input for searching the tool repository.
// Query must contain at least one non-whitespace character.
type DiscoverRequest struct {
	Query   string   `json:"query" binding:"required"`
	Context string   `json:"context,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Limit   int      `json:"limit,omitempty" binding:"omitempty,min=1,max=50"`
}

// DiscoverResponse contains the ranked matches for a discovery query.
type DiscoverResponse struct {
	Tools     []ToolMatch `json:"tools"`
	QueryID   string      `json:"query_id"`
	Timestamp time.Time   `json:"timestamp"`
}

// RegisterToolInput is the full tool record accepted by the manual
// registration endpoint. If ID is empty, it is synthesized from
// Server and Name.
type RegisterToolInput struct {
	ID              string         `json:"id,omitempty"`
	Name            string         `json:"name" binding:"required"`
	Description     string         `json:"description"`
	Tags            []string       `json:"tags,omitempty"`
	Parameters      map[string]any `json:"parameters,omitempty"`
	EstimatedTokens int            `json:"estimated_tokens" binding:"omitempty,min=1"`
	Server          string         `json:"server" binding:"required"`
}

// RegisterToolResult acknowledges a tool registration.
type RegisterToolResult struct {
	Status string `json:"status"`
	ToolID string `json:"tool_id"`
}

// ProvisionRequest asks the gateway to select and load a set of tools
// under a token budget.
// If ToolIDs is empty, the gateway falls back to popular tools.
type ProvisionRequest struct {
	ToolIDs       []string `json:"tool_ids,omitempty"`
	MaxTools      int      `json:"max_tools,omitempty" binding:"omitempty,min=1"`
	ContextTokens int      `json:"context_tokens,omitempty" binding:"omitempty,min=1"`
}

// WireToolDef is the tool definition shape handed to an LLM.
type WireToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ProvisionedTool describes one tool included in a provisioning response.
type ProvisionedTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	TokenCount  int            `json:"token_count"`
	Server      string         `json:"server"`
}

// ProvisionMetadata summarizes the effect of gating on a provisioning call.
type ProvisionMetadata struct {
	TotalTokens   int  `json:"total_tokens"`
	GatingApplied bool `json:"gating_applied"`
}

// ProvisionResponse is the result of a provisioning call.
type ProvisionResponse struct {
	Tools    []ProvisionedTool `json:"tools"`
	Metadata ProvisionMetadata `json:"metadata"`
}

// ExecuteRequest asks the gateway to invoke a provisioned tool on its
// backend server.
type ExecuteRequest struct {
	ToolID    string         `json:"tool_id" binding:"required"`
	Arguments map[string]any `json:"arguments"`
}

// ExecuteResponse wraps the backend's result, which is passed through
// unmodified.
type ExecuteResponse struct {
	Result *ToolInvokeResult `json:"result"`
}

// ExecutionInfo is a side-effect-free preview of what executing a tool
// would do. It never reaches the backend server.
type ExecutionInfo struct {
	ToolName        string   `json:"tool_name"`
	Server          string   `json:"server"`
	Description     string   `json:"description"`
	ActionSummary   string   `json:"action_summary"`
	EstimatedTokens int      `json:"estimated_tokens"`
	Tags            []string `json:"tags"`
}

// ToolInvokeResult represents the result of a Tool call.
// It is designed to be passed down to the end user.
type ToolInvokeResult struct {
	Meta    map[string]any `json:"_meta,omitempty"`
	IsError bool           `json:"isError,omitempty"`

	Content           []map[string]any `json:"content"`
	StructuredContent any              `json:"structuredContent,omitempty"`
}

// ClearResult acknowledges a repository clear.
type ClearResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
