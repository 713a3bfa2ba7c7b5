// Package registry maintains the catalog of available agents. Descriptors
// are registered once at startup and the registry is read-only afterwards
// from the orchestrator's perspective, so lookups need no locking guarantees
// beyond the internal mutex kept for safety.
package registry

import (
	"fmt"
	"sync"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
)

// Registry holds agent descriptors keyed by unique name, preserving
// registration order for deterministic eligibility sequences and tie-breaks.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]core.AgentDescriptor
	ordered []string
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]core.AgentDescriptor)}
}

// Register adds a descriptor. Fails with core.ErrDuplicateAgent if the name
// is taken and with a *core.ValidationError for structurally incomplete
// descriptors (missing name, eligibility predicate or decision function).
func (r *Registry) Register(desc core.AgentDescriptor) error {
	if desc.Name == "" {
		return &core.ValidationError{Field: "name", Message: "agent name must not be empty"}
	}
	if desc.Eligible == nil {
		return &core.ValidationError{Field: "eligible", Value: desc.Name, Message: "eligibility predicate is required"}
	}
	if desc.Decide == nil {
		return &core.ValidationError{Field: "decide", Value: desc.Name, Message: "decision function is required"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[desc.Name]; exists {
		return fmt.Errorf("%w: %s", core.ErrDuplicateAgent, desc.Name)
	}
	r.byName[desc.Name] = desc
	r.ordered = append(r.ordered, desc.Name)
	return nil
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (core.AgentDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.byName[name]
	if !ok {
		return core.AgentDescriptor{}, fmt.Errorf("%w: %s", core.ErrAgentNotFound, name)
	}
	return desc, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

// Names returns all registered agent names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// Eligible evaluates every eligibility predicate against the given snapshot
// and returns the descriptors that report true, in registration order (the
// stable tie-break for selection fallback).
func (r *Registry) Eligible(state core.Snapshot) []core.AgentDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.AgentDescriptor
	for _, name := range r.ordered {
		desc := r.byName[name]
		if desc.Eligible(state) {
			out = append(out, desc)
		}
	}
	return out
}
