package core

import (
	"context"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/logging"
)

// AgentDescriptor is the capability record published for one agent at
// startup: a unique name, a one-line summary, a pure eligibility predicate
// over state snapshots, and the external decision function invoked while the
// agent owns the conversation. Descriptors are immutable after registration.
type AgentDescriptor struct {
	// Name is the unique external identifier of the agent.
	Name string
	// Description is a one-line capability summary shown to selection logic.
	Description string
	// Eligible reports whether the agent can usefully act given the state
	// snapshot. Must be a pure function with no side effects.
	Eligible func(Snapshot) bool
	// Decide is the agent's reasoning function. Opaque to the orchestrator;
	// typically an adapter around an LLM backend.
	Decide DecisionFunc
}

// Decision is what an agent's reasoning returns for one turn.
type Decision struct {
	// Reply is the user-facing answer for this turn.
	Reply string
	// Relinquish signals explicit handoff: the agent is done and control
	// returns to the orchestrator. An explicit return value, not an error.
	Relinquish bool
	// ToolCallsIssued counts the tool invocations the agent dispatched while
	// producing this decision.
	ToolCallsIssued int
}

// Turn carries everything an agent decision function may consult for one
// user turn. State is an immutable snapshot; mutations go through Tools,
// which reads and writes the live SharedState via per-call ToolContexts.
type Turn struct {
	SessionID string
	User      Message
	History   []Message
	State     Snapshot
	Tools     ToolRunner
	Logger    logging.Logger
}

// DecisionFunc is the boundary to external agent reasoning. Implementations
// must honor ctx cancellation (the orchestrator invokes them under a bounded
// timeout) and must not mutate shared state except through turn.Tools.
type DecisionFunc func(ctx context.Context, turn *Turn) (*Decision, error)

// SelectionFunc is the external judgment call used only when multiple agents
// are eligible at once: pick one of the candidates given state and history.
// The returned name must be present in the candidate set; anything else is
// treated as ErrInvalidSelection and the orchestrator falls back to the
// first-registered eligible agent.
type SelectionFunc func(ctx context.Context, candidates []AgentDescriptor, state Snapshot, history []Message) (string, error)
