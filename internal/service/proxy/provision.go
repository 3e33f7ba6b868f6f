package proxy

import "sync"

// ProvisionStore tracks which tool ids are authorized for execution.
// Membership is the authorization gate: Execute refuses any tool id that is
// not in the store.
//
// The default implementation is process-wide. Multi-tenant deployments can
// swap in a session-scoped implementation without touching the router.
type ProvisionStore interface {
	Provision(toolID string)
	Unprovision(toolID string)
	IsProvisioned(toolID string) bool
	List() []string
}

// MemoryProvisionStore is the process-wide, in-memory ProvisionStore.
// It is unbounded and has no automatic eviction.
type MemoryProvisionStore struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewMemoryProvisionStore creates an empty provision store.
func NewMemoryProvisionStore() *MemoryProvisionStore {
	return &MemoryProvisionStore{ids: make(map[string]struct{})}
}

// Provision marks a tool id as executable. The id is not required to exist
// in the tool repository: provisioning bookkeeping is deliberately decoupled
// from repository correctness, and execution of an unregistered id fails at
// the backend instead.
func (s *MemoryProvisionStore) Provision(toolID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[toolID] = struct{}{}
}

// Unprovision removes a tool id from the set. Removing an absent id is a
// no-op.
func (s *MemoryProvisionStore) Unprovision(toolID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, toolID)
}

// IsProvisioned reports whether the tool id may be executed.
func (s *MemoryProvisionStore) IsProvisioned(toolID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[toolID]
	return ok
}

// List returns a snapshot of all provisioned tool ids.
func (s *MemoryProvisionStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}
