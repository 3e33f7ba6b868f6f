// Package gating implements token-budgeted selection of candidate tools.
package gating

import (
	"go.uber.org/zap"

	"github.com/toolgate/toolgate/internal/registry"
	"github.com/toolgate/toolgate/pkg/types"
)

const (
	// DefaultMaxTools is the selection size cap used when the caller does
	// not specify one.
	DefaultMaxTools = 10

	// popularOversample is how many times maxTools worth of popular tools
	// are fetched when the caller provides no candidates. Oversampling
	// gives the budget filter room to pick the best-fitting subset rather
	// than just the first maxTools.
	popularOversample = 2
)

// Engine selects token-budget-constrained subsets of repository tools.
type Engine struct {
	registry *registry.ToolRegistry
	logger   *zap.Logger
}

// NewEngine creates a gating engine backed by the given repository.
func NewEngine(reg *registry.ToolRegistry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{registry: reg, logger: logger}
}

// Select returns the maximal prefix-greedy subset of the candidates that
// fits both the count cap and the token budget.
//
// Candidates are taken in the order provided: the caller is responsible for
// ordering them by relevance (typically discovery results already sorted by
// score). Unknown tool ids are silently dropped. When toolIDs is empty, the
// candidates are the repository's popular tools, oversampled beyond maxTools.
//
// This is a first-fit-by-order greedy bin-pack, not a knapsack optimizer:
// a candidate that would overflow the budget is skipped, and later smaller
// candidates are still considered. It can leave budget unused, which is
// acceptable for pre-sorted, already-filtered candidate lists.
//
// The token budget is a hard ceiling: the sum of EstimatedTokens over the
// returned set never exceeds maxTokens.
func (e *Engine) Select(toolIDs []string, maxTools, maxTokens int) []*registry.Tool {
	if maxTools <= 0 {
		maxTools = DefaultMaxTools
	}

	var candidates []*registry.Tool
	if len(toolIDs) > 0 {
		candidates = e.registry.GetByIDs(toolIDs)
	} else {
		candidates = e.registry.Popular(popularOversample * maxTools)
	}

	selected := make([]*registry.Tool, 0, maxTools)
	usedTokens := 0
	for _, tool := range candidates {
		if len(selected) >= maxTools {
			break
		}
		if maxTokens > 0 && usedTokens+tool.EstimatedTokens > maxTokens {
			// skip, don't abort: a later smaller tool may still fit
			continue
		}
		selected = append(selected, tool)
		usedTokens += tool.EstimatedTokens
	}

	e.logger.Debug("gating selection completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(selected)),
		zap.Int("used_tokens", usedTokens),
		zap.Int("max_tokens", maxTokens),
	)
	return selected
}

// FormatForWire maps tools to the definition shape handed to an LLM.
// Pure, no side effects. Tools without a registered parameter schema get the
// empty object schema.
func FormatForWire(tools []*registry.Tool) []types.WireToolDef {
	defs := make([]types.WireToolDef, len(tools))
	for i, tool := range tools {
		defs[i] = types.WireToolDef{
			Name:        tool.ID,
			Description: tool.Description,
			InputSchema: tool.InputSchema(),
		}
	}
	return defs
}
