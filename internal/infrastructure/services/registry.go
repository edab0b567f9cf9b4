package services

import (
	"sync"

	"github.com/sophialabs/stubwire/internal/domain/match"
)

// EndpointRegistry is the process-wide collection of compiled endpoint
// definitions, keyed by identity (METHOD:pattern) and kept in insertion
// order. Dispatch scans a consistent snapshot; authoring operations (upsert,
// delete, replace) are serialized behind the write lock so no in-flight scan
// observes a half-applied mutation.
//
// The registry has process lifetime and no durability: a restart loses all
// non-seeded definitions.
type EndpointRegistry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*match.CompiledEndpoint
}

// NewEndpointRegistry creates an empty registry.
func NewEndpointRegistry() *EndpointRegistry {
	return &EndpointRegistry{
		entries: make(map[string]*match.CompiledEndpoint),
	}
}

// Upsert inserts or replaces the entry with ep's identity. Replacing keeps
// the entry's original position in iteration order; inserting appends.
// Upserting the same identity twice yields exactly one entry.
func (r *EndpointRegistry) Upsert(ep *match.CompiledEndpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[ep.Identity]; !exists {
		r.order = append(r.order, ep.Identity)
	}
	r.entries[ep.Identity] = ep
}

// Delete removes the entry with the given identity, reporting whether it
// existed.
func (r *EndpointRegistry) Delete(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[identity]; !exists {
		return false
	}
	delete(r.entries, identity)
	for i, id := range r.order {
		if id == identity {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Replace swaps the whole registry content for the given entries, preserving
// their order. Used by seed loads and hot reloads.
func (r *EndpointRegistry) Replace(eps []*match.CompiledEndpoint) {
	entries := make(map[string]*match.CompiledEndpoint, len(eps))
	order := make([]string, 0, len(eps))
	for _, ep := range eps {
		if _, exists := entries[ep.Identity]; !exists {
			order = append(order, ep.Identity)
		}
		entries[ep.Identity] = ep
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = entries
	r.order = order
}

// Snapshot returns the entries in insertion order. The returned slice is a
// copy: callers iterate it without holding any lock, and later mutations do
// not affect an in-flight scan.
func (r *EndpointRegistry) Snapshot() []*match.CompiledEndpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*match.CompiledEndpoint, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

// Get returns the entry with the given identity.
func (r *EndpointRegistry) Get(identity string) (*match.CompiledEndpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.entries[identity]
	return ep, ok
}

// Identities returns the registered identities in insertion order.
func (r *EndpointRegistry) Identities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered definitions.
func (r *EndpointRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
