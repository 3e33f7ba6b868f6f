package registry

import (
	"sort"
	"sync"
)

// ToolRegistry is the in-memory tool repository.
//
// All state is guarded by a single RWMutex: mutations (Add, Clear,
// RecordUsage) are atomic with respect to interleaved reads, and read paths
// return shallow snapshots so discovery and gating can score without holding
// the lock. Contention is expected to be low; this is not a hot path.
type ToolRegistry struct {
	mu sync.RWMutex

	// tools is keyed by canonical tool id. Re-registration under the same
	// id overwrites the previous record.
	tools map[string]*Tool

	// order records insertion order of tool ids, used for deterministic
	// tie-breaking. Re-registration keeps the original position.
	order []string

	// usage counts how many times each tool has been successfully
	// executed. Monotonic until Clear.
	usage map[string]uint64
}

// NewToolRegistry creates an empty tool repository.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]*Tool),
		usage: make(map[string]uint64),
	}
}

// Add upserts a tool keyed by its id. The last registration for a given id
// wins: re-registration is an update, not an error.
func (r *ToolRegistry) Add(t *Tool) error {
	if err := t.Validate(); err != nil {
		return err
	}

	// store a copy so callers cannot mutate repository state afterwards
	stored := *t
	stored.Tags = normalizeTags(t.Tags)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[stored.ID]; !exists {
		r.order = append(r.order, stored.ID)
	}
	r.tools[stored.ID] = &stored
	return nil
}

// Get returns the tool with the given id, or false if it is not registered.
func (r *ToolRegistry) Get(id string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[id]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

// GetByIDs returns the tools found for the given ids, in the order the ids
// were provided. Unknown ids are silently skipped, so callers must handle
// partial results.
func (r *ToolRegistry) GetByIDs(ids []string) []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Tool, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.tools[id]; ok {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}

// ListAll returns a snapshot of every registered tool in insertion order.
func (r *ToolRegistry) ListAll() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Tool, 0, len(r.tools))
	for _, id := range r.order {
		if t, ok := r.tools[id]; ok {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}

// Count returns the number of registered tools.
func (r *ToolRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// RecordUsage increments the usage counter for a tool id.
// Unknown ids are counted too: the id may be registered later and its
// history should not be lost.
func (r *ToolRegistry) RecordUsage(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage[id]++
}

// UsageCount returns the current usage counter for a tool id.
func (r *ToolRegistry) UsageCount(id string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usage[id]
}

// Popular returns up to limit tools ranked by usage count, most used first.
// Ties are broken by insertion order so results stay deterministic.
func (r *ToolRegistry) Popular(limit int) []*Tool {
	if limit <= 0 {
		return nil
	}

	r.mu.RLock()
	type ranked struct {
		tool  *Tool
		count uint64
		pos   int
	}
	all := make([]ranked, 0, len(r.tools))
	for pos, id := range r.order {
		t, ok := r.tools[id]
		if !ok {
			continue
		}
		cp := *t
		all = append(all, ranked{tool: &cp, count: r.usage[id], pos: pos})
	}
	r.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].pos < all[j].pos
	})

	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]*Tool, len(all))
	for i, rk := range all {
		out[i] = rk.tool
	}
	return out
}

// RemoveByServer deletes all tools provided by the given server.
// It returns the ids of the removed tools.
func (r *ToolRegistry) RemoveByServer(server string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	remaining := r.order[:0]
	for _, id := range r.order {
		t, ok := r.tools[id]
		if ok && t.Server == server {
			delete(r.tools, id)
			delete(r.usage, id)
			removed = append(removed, id)
			continue
		}
		remaining = append(remaining, id)
	}
	r.order = remaining
	return removed
}

// Clear empties the repository and the usage counters atomically.
// A concurrent reader observes either the full state or the empty state,
// never one without the other.
func (r *ToolRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools = make(map[string]*Tool)
	r.usage = make(map[string]uint64)
	r.order = nil
}
