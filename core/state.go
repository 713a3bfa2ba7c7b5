package core

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// ReservedKeyPrefix marks the state namespace reserved for orchestrator
// bookkeeping. Tool and agent writes to keys with this prefix are rejected.
const ReservedKeyPrefix = "__"

// Value is the structured record stored under a SharedState key. State values
// are small records rather than raw text so tools can read each other's
// output without re-parsing prose.
type Value struct {
	Data      map[string]any `json:"data"`
	UpdatedBy string         `json:"updated_by,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// clone deep-copies the top-level Data map. Nested values are shared; callers
// must treat snapshot data as read-only.
func (v Value) clone() Value {
	c := Value{UpdatedBy: v.UpdatedBy, UpdatedAt: v.UpdatedAt}
	if v.Data != nil {
		c.Data = make(map[string]any, len(v.Data))
		for k, d := range v.Data {
			c.Data[k] = d
		}
	}
	return c
}

// SharedState is the versioned key/value record scoped to one conversation
// session. It holds user profile facts, trip facts gathered so far, and the
// active-agent routing field. One instance exists per Session and is owned
// exclusively by it; agents and tools reach it only through a ToolContext.
//
// Contract:
//   - every mutation bumps the version counter exactly once (all-or-nothing)
//   - a Set is visible to every subsequent Get in program order
//   - Update serializes read-modify-write cycles so concurrent tool calls
//     within a turn never lose updates
//   - Snapshot returns an immutable copy for decision-making without
//     blocking writers
type SharedState struct {
	mu          sync.RWMutex
	values      map[string]Value
	version     uint64
	activeAgent string // "" means no agent owns the conversation
}

// NewSharedState constructs an empty state container at version 0.
func NewSharedState() *SharedState {
	return &SharedState{values: make(map[string]Value)}
}

func validateKey(key string) error {
	if key == "" {
		return &ValidationError{Field: "key", Message: "state key must not be empty"}
	}
	if strings.HasPrefix(key, ReservedKeyPrefix) {
		return &ValidationError{Field: "key", Value: key, Message: "state key uses reserved prefix " + ReservedKeyPrefix}
	}
	return nil
}

// Get returns the committed value for key and whether it exists.
func (s *SharedState) Get(key string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return Value{}, false
	}
	return v.clone(), true
}

// Set atomically stores a value under key and returns the new version.
// Malformed keys fail with a *ValidationError and leave state untouched.
func (s *SharedState) Set(key string, v Value) (uint64, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v.UpdatedAt = time.Now().UTC()
	s.values[key] = v.clone()
	s.version++
	return s.version, nil
}

// Update applies fn to the current value of key under the state lock. This is
// the single serializing mutation path: concurrent tool calls performing
// read-modify-write cycles (e.g. counters, list appends) cannot interleave.
// fn receives the previous value (ok reports existence) and returns the
// replacement; an error from fn aborts the update with no version change.
func (s *SharedState) Update(key string, fn func(prev Value, ok bool) (Value, error)) (uint64, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.values[key]
	if ok {
		prev = prev.clone()
	}
	next, err := fn(prev, ok)
	if err != nil {
		return 0, err
	}
	next.UpdatedAt = time.Now().UTC()
	s.values[key] = next.clone()
	s.version++
	return s.version, nil
}

// Version returns the current version counter.
func (s *SharedState) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// ActiveAgent returns the name of the agent that currently owns the
// conversation, or ok=false when none does.
func (s *SharedState) ActiveAgent() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeAgent, s.activeAgent != ""
}

// SetActiveAgent records a select transition. Reserved for orchestrator
// transition logic; agents and tools signal handoff through their decision
// result instead. The change and the version bump are a single atomic step.
func (s *SharedState) SetActiveAgent(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeAgent = name
	s.version++
	return s.version
}

// ClearActiveAgent records a relinquish transition atomically with its
// version bump. No interleaved read can observe a half-applied handoff.
func (s *SharedState) ClearActiveAgent() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeAgent = ""
	s.version++
	return s.version
}

// Snapshot returns an immutable point-in-time copy of the state. Agents use
// snapshots for multi-step decisions; the embedded version lets callers
// detect staleness (optimistic concurrency) without blocking readers.
func (s *SharedState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make(map[string]Value, len(s.values))
	for k, v := range s.values {
		values[k] = v.clone()
	}
	return Snapshot{version: s.version, activeAgent: s.activeAgent, values: values}
}

// Snapshot is a read-only copy of a SharedState at a point in time.
type Snapshot struct {
	version     uint64
	activeAgent string
	values      map[string]Value
}

// Version returns the state version this snapshot was taken at.
func (s Snapshot) Version() uint64 { return s.version }

// ActiveAgent returns the active agent recorded in the snapshot, if any.
func (s Snapshot) ActiveAgent() (string, bool) { return s.activeAgent, s.activeAgent != "" }

// Get returns the snapshotted value for key.
func (s Snapshot) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	if !ok {
		return Value{}, false
	}
	return v.clone(), true
}

// Has reports whether key exists in the snapshot. Convenient for eligibility
// predicates.
func (s Snapshot) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns the snapshotted keys in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
