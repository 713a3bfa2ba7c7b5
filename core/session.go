package core

import (
	"sync"
	"time"
)

// Phase is the orchestration state of a session.
type Phase string

const (
	// PhaseIdle means no agent owns the conversation; the next user turn
	// triggers a routing decision.
	PhaseIdle Phase = "idle"
	// PhaseActive means a named agent currently owns the conversation.
	PhaseActive Phase = "active"
	// PhaseTerminated is terminal: the session is read-only history.
	PhaseTerminated Phase = "terminated"
)

// Session ties one user's SharedState, ordered message history and tool-call
// audit log together and owns the lifecycle of a conversation. History and
// audit log are append-only; state mutations flow through ToolContext or
// orchestrator transition logic, never through agent decision code directly.
type Session struct {
	ID      string
	UserID  string
	State   *SharedState
	Created time.Time

	mu         sync.RWMutex
	messages   []Message
	audit      []ToolCall
	terminated bool
	updated    time.Time
}

// NewSession creates a session for the given user with fresh state.
func NewSession(id, userID string) *Session {
	now := time.Now().UTC()
	return &Session{ID: id, UserID: userID, State: NewSharedState(), Created: now, updated: now}
}

// AppendMessage appends to the conversation history.
func (s *Session) AppendMessage(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	s.updated = time.Now().UTC()
}

// History returns a defensive copy of the full ordered message history.
func (s *Session) History() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// AppendToolCall appends a completed invocation record to the audit log.
// Called for every invocation regardless of outcome.
func (s *Session) AppendToolCall(c ToolCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, c)
	s.updated = time.Now().UTC()
}

// AuditLog returns a defensive copy of the ordered tool-call audit log.
func (s *Session) AuditLog() []ToolCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ToolCall, len(s.audit))
	copy(out, s.audit)
	return out
}

// Terminate moves the session to its terminal phase. Idempotent; any active
// agent is cleared so the final state is consistent.
func (s *Session) Terminate() {
	s.mu.Lock()
	already := s.terminated
	s.terminated = true
	s.updated = time.Now().UTC()
	s.mu.Unlock()
	if !already {
		s.State.ClearActiveAgent()
	}
}

// Terminated reports whether the session has ended.
func (s *Session) Terminated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.terminated
}

// Updated returns the time of the last mutation (messages, audit, lifecycle).
func (s *Session) Updated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Phase derives the orchestration state from the termination flag and the
// active-agent field.
func (s *Session) Phase() Phase {
	if s.Terminated() {
		return PhaseTerminated
	}
	if _, ok := s.State.ActiveAgent(); ok {
		return PhaseActive
	}
	return PhaseIdle
}
