// Package registry implements toolgate's in-memory tool repository.
//
// The repository is the source of truth for tool metadata during a process
// lifetime. Registered MCP servers are persisted separately; their tools are
// (re)discovered from live connections and upserted here.
package registry

import (
	"fmt"
	"strings"
)

// toolIDSep joins a server name and a tool name into the id that uniquely
// identifies a tool across toolgate, e.g. "exa_research_paper_search".
// Tool names may themselves contain underscores, so ids are always split on
// the first occurrence of the separator. Server names therefore must not
// contain underscores at all.
const toolIDSep = "_"

// Tool is a unit of backend capability known to the gateway.
type Tool struct {
	// ID is the globally unique tool id, "<server>_<toolname>".
	ID string `json:"id"`

	// Name is the display name of the tool. It is unique only within the
	// context of its server.
	Name string `json:"name"`

	Description string `json:"description"`

	// Tags are short category labels used for discovery filtering and
	// score boosting.
	Tags []string `json:"tags,omitempty"`

	// Parameters is the JSON-Schema-shaped input schema of the tool.
	Parameters map[string]any `json:"parameters,omitempty"`

	// EstimatedTokens is the assumed LLM context cost of including this
	// tool's wire definition. Always positive.
	EstimatedTokens int `json:"estimated_tokens"`

	// Server is the logical name of the backend MCP server that provides
	// this tool. Execution is routed to it.
	Server string `json:"server"`
}

// InputSchema returns the tool's parameter schema, defaulting to an empty
// object schema when none was registered.
func (t *Tool) InputSchema() map[string]any {
	if len(t.Parameters) == 0 {
		return map[string]any{"type": "object"}
	}
	return t.Parameters
}

// Validate checks the tool's own invariants.
func (t *Tool) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tool id must not be empty")
	}
	if t.EstimatedTokens <= 0 {
		return fmt.Errorf("tool %s: estimated_tokens must be positive, got %d", t.ID, t.EstimatedTokens)
	}
	return nil
}

// normalizeTags removes duplicate and empty tags, preserving first-seen order.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// MergeToolID combines a server name and a tool name into the canonical
// tool id.
func MergeToolID(server, tool string) string {
	return server + toolIDSep + tool
}

// SplitToolID splits a canonical tool id into server name and tool name.
// The split happens on the first underscore only, so tool names containing
// underscores survive the round trip.
func SplitToolID(id string) (server, tool string, ok bool) {
	server, tool, ok = strings.Cut(id, toolIDSep)
	if !ok || server == "" || tool == "" {
		return server, tool, false
	}
	return server, tool, true
}
