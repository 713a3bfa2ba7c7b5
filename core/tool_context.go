package core

import (
	"context"
	"sync/atomic"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/logging"
)

// ToolContext is the constrained surface a tool implementation sees during
// one invocation. It binds the session identity, the live SharedState and the
// requesting agent's name, and exposes only scoped state access — no ambient
// or process-global state is reachable through it. A fresh ToolContext is
// created per tool call by the invoker.
type ToolContext struct {
	ctx        context.Context
	sessionID  string
	state      *SharedState
	agentName  string
	callID     string
	logger     logging.Logger
	relinquish *atomic.Bool
}

// NewToolContext binds a context to one tool invocation. logger may be nil.
func NewToolContext(ctx context.Context, sessionID string, state *SharedState, agentName, callID string, logger logging.Logger) *ToolContext {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ToolContext{ctx: ctx, sessionID: sessionID, state: state, agentName: agentName, callID: callID, logger: logger, relinquish: new(atomic.Bool)}
}

// Context returns the cancellation context of this invocation. Tools doing
// network or other blocking work must honor it.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// SessionID returns the owning session's identifier.
func (tc *ToolContext) SessionID() string { return tc.sessionID }

// AgentName returns the name of the agent that issued this call, if any.
func (tc *ToolContext) AgentName() string { return tc.agentName }

// CallID returns the unique identifier of this invocation, matching the
// audit record.
func (tc *ToolContext) CallID() string { return tc.callID }

// Logger returns the invocation's logger.
func (tc *ToolContext) Logger() logging.Logger { return tc.logger }

// GetState reads the committed value for key from session state.
func (tc *ToolContext) GetState(key string) (Value, bool) {
	return tc.state.Get(key)
}

// SetState writes data under key, stamped with the calling agent's name. The
// write commits atomically and is visible to every subsequent read in the
// session; there is no partial write.
func (tc *ToolContext) SetState(key string, data map[string]any) (uint64, error) {
	version, err := tc.state.Set(key, Value{Data: data, UpdatedBy: tc.agentName})
	if err != nil {
		return 0, err
	}
	tc.logger.Debug("tool.state.set", "key", key, "version", version, "agent", tc.agentName, "call_id", tc.callID)
	return version, nil
}

// UpdateState performs an atomic read-modify-write on key. Concurrent tool
// calls within a turn serialize here, so no update is ever lost.
func (tc *ToolContext) UpdateState(key string, fn func(prev Value, ok bool) (Value, error)) (uint64, error) {
	version, err := tc.state.Update(key, func(prev Value, ok bool) (Value, error) {
		next, err := fn(prev, ok)
		if err != nil {
			return Value{}, err
		}
		next.UpdatedBy = tc.agentName
		return next, nil
	})
	if err != nil {
		return 0, err
	}
	tc.logger.Debug("tool.state.update", "key", key, "version", version, "agent", tc.agentName, "call_id", tc.callID)
	return version, nil
}

// StateVersion returns the current committed state version, letting tools
// detect concurrent progress against an earlier snapshot.
func (tc *ToolContext) StateVersion() uint64 { return tc.state.Version() }

// SignalRelinquish marks the invocation as requesting a handoff: after the
// turn completes, the active agent releases ownership of the conversation.
// The transition itself is performed by the orchestrator, never by the tool.
func (tc *ToolContext) SignalRelinquish() {
	tc.relinquish.Store(true)
	tc.logger.Debug("tool.relinquish.signaled", "agent", tc.agentName, "call_id", tc.callID)
}

// RelinquishSignaled reports whether SignalRelinquish was called.
func (tc *ToolContext) RelinquishSignaled() bool { return tc.relinquish.Load() }
