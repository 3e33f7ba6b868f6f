// Package discovery implements semantic search over the tool repository.
package discovery

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/toolgate/toolgate/internal/registry"
)

const (
	// DefaultLimit is the number of matches returned when the caller does
	// not specify a limit.
	DefaultLimit = 10

	// MaxLimit caps the number of matches a single query may request.
	MaxLimit = 50

	// tagBoost is added to a tool's similarity score for every requested
	// tag it carries. The final score is clamped back to [0,1].
	tagBoost = 0.2
)

// Match is the ephemeral result of a discovery query. Not persisted.
type Match struct {
	Tool        *registry.Tool
	Score       float64
	MatchedTags []string
}

// cachedEmbedding pairs a tool's embedding with the document text it was
// computed from, so re-registration with different text invalidates the
// cached vector.
type cachedEmbedding struct {
	doc string
	vec []float32
}

// Engine scores repository tools against free-text queries.
type Engine struct {
	registry *registry.ToolRegistry
	logger   *zap.Logger

	mu    sync.Mutex
	cache map[string]cachedEmbedding
}

// NewEngine creates a discovery engine backed by the given repository.
func NewEngine(reg *registry.ToolRegistry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		registry: reg,
		logger:   logger,
		cache:    make(map[string]cachedEmbedding),
	}
}

// Search returns the repository tools ranked by relevance to the query.
//
// Tags act as a hard pre-filter: when provided, a tool with no tag overlap
// is excluded entirely, no matter how semantically close it is. The
// remaining tools are scored by cosine similarity between the query (plus
// optional caller context) and the tool's document, boosted per matched tag
// and clamped to [0,1]. Results are sorted by score descending with ties
// broken by insertion order, then truncated to limit.
//
// An empty repository yields an empty result, not an error.
func (e *Engine) Search(query, context string, tags []string, limit int) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	queryText := query
	if context != "" {
		queryText = query + " " + context
	}
	queryVec := embed(queryText)

	tools := e.registry.ListAll()
	matches := make([]Match, 0, len(tools))

	for _, tool := range tools {
		matchedTags := intersectTags(tags, tool.Tags)
		if len(tags) > 0 && len(matchedTags) == 0 {
			continue
		}

		score := cosine(queryVec, e.toolEmbedding(tool))
		score += tagBoost * float64(len(matchedTags))
		if score > 1 {
			score = 1
		}

		matches = append(matches, Match{
			Tool:        tool,
			Score:       score,
			MatchedTags: matchedTags,
		})
	}

	// stable sort keeps insertion order for equal scores, which makes
	// repeated queries against a fixed repository deterministic
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	e.logger.Debug("discovery search completed",
		zap.String("query", query),
		zap.Strings("tags", tags),
		zap.Int("candidates", len(tools)),
		zap.Int("matches", len(matches)),
	)
	return matches, nil
}

// toolEmbedding returns the embedding of the tool's document, computing and
// caching it on first use. The cache entry is keyed by tool id and carries
// the source document, so a re-registered tool with changed text gets a
// fresh vector instead of a stale one.
func (e *Engine) toolEmbedding(tool *registry.Tool) []float32 {
	doc := toolDocument(tool)

	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.cache[tool.ID]; ok && entry.doc == doc {
		return entry.vec
	}
	vec := embed(doc)
	e.cache[tool.ID] = cachedEmbedding{doc: doc, vec: vec}
	return vec
}

// toolDocument builds the synthetic text a tool is scored against.
func toolDocument(tool *registry.Tool) string {
	parts := make([]string, 0, 3)
	if tool.Name != "" {
		parts = append(parts, tool.Name)
	}
	if tool.Description != "" {
		parts = append(parts, tool.Description)
	}
	if len(tool.Tags) > 0 {
		parts = append(parts, strings.Join(tool.Tags, " "))
	}
	return strings.Join(parts, " ")
}

// intersectTags returns the requested tags present on the tool, in request
// order.
func intersectTags(requested, toolTags []string) []string {
	if len(requested) == 0 || len(toolTags) == 0 {
		return nil
	}
	have := make(map[string]struct{}, len(toolTags))
	for _, tag := range toolTags {
		have[tag] = struct{}{}
	}
	var matched []string
	for _, tag := range requested {
		if _, ok := have[tag]; ok {
			matched = append(matched, tag)
		}
	}
	return matched
}
