package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/logging"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/orchestrator"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/registry"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/tool"
)

const (
	defaultFallbackReply = "I'm not sure which of our specialists can help with that yet. Could you tell me a bit more about your trip?"
	defaultRetryReply    = "Sorry, I wasn't able to put together an answer in time. Please try again."
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// Store holds sessions between turns. Defaults to an InMemoryStore.
	Store Store
	// FallbackReply is returned when no agent is eligible for a turn.
	FallbackReply string
	// RetryReply is returned when the active agent's decision call fails or
	// times out; the session keeps its prior state so the next message retries.
	RetryReply string
	// Logger receives structured turn events.
	Logger logging.Logger
}

// Reply is the user-visible outcome of one conversational turn.
type Reply struct {
	// Text is the reply shown to the user.
	Text string
	// ActiveAgent names the agent owning the conversation after this turn,
	// or nil when ownership returned to the orchestrator.
	ActiveAgent *string
}

// Manager drives conversations end to end: it owns session lifecycle and
// runs the select/dispatch loop for each user message. Turns within one
// session are strictly sequential; a second PostMessage for the same session
// blocks until the first completes. Distinct sessions proceed in parallel.
type Manager struct {
	store    Store
	registry *registry.Registry
	orch     *orchestrator.Orchestrator
	invoker  *tool.Invoker
	fallback string
	retry    string
	logger   logging.Logger

	mu    sync.Mutex
	turns map[string]*sync.Mutex
}

// NewManager wires a Manager over a registry, orchestrator and tool invoker.
func NewManager(reg *registry.Registry, orch *orchestrator.Orchestrator, invoker *tool.Invoker, optFns ...func(o *ManagerOptions)) *Manager {
	opts := ManagerOptions{
		Store:         NewInMemoryStore(),
		FallbackReply: defaultFallbackReply,
		RetryReply:    defaultRetryReply,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{
		store:    opts.Store,
		registry: reg,
		orch:     orch,
		invoker:  invoker,
		fallback: opts.FallbackReply,
		retry:    opts.RetryReply,
		logger:   opts.Logger,
		turns:    make(map[string]*sync.Mutex),
	}
}

// StartSession creates a fresh session for the user and returns its id.
func (m *Manager) StartSession(userID string) (string, error) {
	sess, err := m.store.Create(userID)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	m.logger.Info("session.started", "session_id", sess.ID, "user_id", userID)
	return sess.ID, nil
}

// Session returns the live session for inspection (history, audit log).
func (m *Manager) Session(sessionID string) (*core.Session, error) {
	return m.store.Get(sessionID)
}

// EndSession terminates the session. Its history and audit log remain
// readable; further PostMessage calls fail with ErrSessionTerminated.
func (m *Manager) EndSession(sessionID string) error {
	sess, err := m.store.Get(sessionID)
	if err != nil {
		return err
	}
	lock := m.turnLock(sessionID)
	lock.Lock()
	defer lock.Unlock()
	sess.Terminate()
	m.logger.Info("session.terminated", "session_id", sessionID)
	return nil
}

// PostMessage runs one conversational turn: append the user message, resolve
// which agent owns the turn (continuing or selecting), dispatch its decision
// function and apply the resulting transition. Every failure path returns a
// safe reply and leaves state consistent; an error return means the turn
// could not run at all (unknown or terminated session).
func (m *Manager) PostMessage(ctx context.Context, sessionID, text string) (*Reply, error) {
	sess, err := m.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	lock := m.turnLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if sess.Terminated() {
		return nil, core.ErrSessionTerminated
	}

	user := core.NewUserMessage(text)
	sess.AppendMessage(user)

	desc, err := m.resolveAgent(ctx, sess)
	if err != nil {
		return nil, err
	}
	if desc == nil {
		// No eligible agent: the orchestrator answers directly and
		// ownership stays unassigned.
		sess.AppendMessage(core.NewAgentMessage("", m.fallback))
		m.logger.Info("turn.fallback", "session_id", sessionID)
		return &Reply{Text: m.fallback}, nil
	}

	runner := m.invoker.ForSession(sess)
	turn := &core.Turn{
		SessionID: sessionID,
		User:      user,
		History:   sess.History(),
		State:     sess.State.Snapshot(),
		Tools:     runner,
		Logger:    m.logger,
	}

	decision, err := m.orch.Dispatch(ctx, *desc, turn)
	if err != nil {
		// The reasoning call failed or timed out. Ownership and state are
		// left untouched so the next user message retries.
		sess.AppendMessage(core.NewAgentMessage(desc.Name, m.retry))
		m.logger.Warn("turn.decision_failed", "session_id", sessionID, "agent", desc.Name, "error", err.Error())
		name := desc.Name
		return &Reply{Text: m.retry, ActiveAgent: &name}, nil
	}

	sess.AppendMessage(core.NewAgentMessage(desc.Name, decision.Reply))

	if decision.Relinquish || runner.RelinquishSignaled() {
		sess.State.ClearActiveAgent()
		m.logger.Info("turn.relinquished", "session_id", sessionID, "agent", desc.Name)
		return &Reply{Text: decision.Reply}, nil
	}

	name := desc.Name
	return &Reply{Text: decision.Reply, ActiveAgent: &name}, nil
}

// resolveAgent returns the agent owning this turn: the currently active
// agent when one is set, otherwise the orchestrator's selection. A nil
// descriptor with nil error means no agent is eligible.
func (m *Manager) resolveAgent(ctx context.Context, sess *core.Session) (*core.AgentDescriptor, error) {
	if name, ok := sess.State.ActiveAgent(); ok {
		desc, err := m.registry.Get(name)
		if err == nil {
			return &desc, nil
		}
		if !errors.Is(err, core.ErrAgentNotFound) {
			return nil, err
		}
		// The recorded owner disappeared from the registry; drop the claim
		// and fall through to a fresh selection.
		sess.State.ClearActiveAgent()
		m.logger.Warn("turn.active_agent_missing", "session_id", sess.ID, "agent", name)
	}

	desc, err := m.orch.Select(ctx, sess.State.Snapshot(), sess.History())
	if err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, nil
	}
	sess.State.SetActiveAgent(desc.Name)
	m.logger.Info("turn.selected", "session_id", sess.ID, "agent", desc.Name)
	return desc, nil
}

func (m *Manager) turnLock(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.turns[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		m.turns[sessionID] = lock
	}
	return lock
}
