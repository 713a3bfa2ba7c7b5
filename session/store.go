package session

import (
	"sync"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
)

// Store persists sessions between turns. Sessions are live objects whose
// internals are individually synchronized, so the store hands out shared
// references rather than clones.
type Store interface {
	// Create allocates a new session for the user and returns it.
	Create(userID string) (*core.Session, error)
	// Get returns an existing session or core.ErrSessionNotFound.
	Get(sessionID string) (*core.Session, error)
	// Delete removes a session. Deleting an unknown id is a no-op.
	Delete(sessionID string) error
}

// InMemoryStore is a volatile Store implementation keeping sessions in a
// process local map. It is safe for concurrent access and best suited for
// tests or single-process deployments.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Create allocates a session with a fresh id and stores it.
func (s *InMemoryStore) Create(userID string) (*core.Session, error) {
	sess := core.NewSession(core.NewID(), userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess, nil
}

// Get returns the session with the given id.
func (s *InMemoryStore) Get(sessionID string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes the session with the given id.
func (s *InMemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
