// Package orchestrator implements the routing state machine that decides,
// turn by turn, which agent owns a conversation. A session is in one of
// three phases: idle (no owner — the next turn triggers a routing decision),
// active (a named agent owns the conversation until it relinquishes) and
// terminated. The orchestrator itself is stateless with respect to session
// data; one instance is shared across all sessions.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/logging"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/registry"
)

const (
	defaultSelectionTimeout = 10 * time.Second
	defaultDecisionTimeout  = 60 * time.Second
)

// Options configures an Orchestrator.
type Options struct {
	// Selector is the external judgment call used when several agents are
	// eligible at once. Optional: without one, the first-registered eligible
	// agent wins.
	Selector core.SelectionFunc
	// SelectionTimeout bounds the external selection call. On expiry the
	// orchestrator falls back to the first-registered eligible agent rather
	// than stalling the session.
	SelectionTimeout time.Duration
	// DecisionTimeout bounds the active agent's reasoning call per turn.
	DecisionTimeout time.Duration
	// Logger receives structured routing events.
	Logger logging.Logger
}

// Orchestrator evaluates shared state against the agent registry to pick
// conversation owners, and dispatches turns to the active agent's decision
// function under a bounded timeout.
type Orchestrator struct {
	registry         *registry.Registry
	selector         core.SelectionFunc
	selectionTimeout time.Duration
	decisionTimeout  time.Duration
	logger           logging.Logger
}

// New constructs an Orchestrator over the given registry.
func New(reg *registry.Registry, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		SelectionTimeout: defaultSelectionTimeout,
		DecisionTimeout:  defaultDecisionTimeout,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{
		registry:         reg,
		selector:         opts.Selector,
		selectionTimeout: opts.SelectionTimeout,
		decisionTimeout:  opts.DecisionTimeout,
		logger:           opts.Logger,
	}
}

// DecisionTimeout returns the per-turn reasoning deadline.
func (o *Orchestrator) DecisionTimeout() time.Duration { return o.decisionTimeout }

// Select runs one routing decision against a state snapshot and history.
// It returns the chosen descriptor, or nil when no agent is eligible (the
// caller answers the user directly — the fallback path, which never blocks
// beyond the selection timeout and never deadlocks the session).
//
// Routing rules:
//   - zero eligible agents: no selection
//   - exactly one: chosen without consulting the external selector
//   - several: defer to the external selector; an invalid name, an error or
//     a timeout falls back to the first-registered eligible agent
//
// For a fixed snapshot and registry the result is deterministic as long as
// the external selector is (its contract); both fallback paths are pure
// functions of registration order, so retries after transient selector
// failures cannot fork behavior.
func (o *Orchestrator) Select(ctx context.Context, state core.Snapshot, history []core.Message) (*core.AgentDescriptor, error) {
	candidates := o.registry.Eligible(state)
	switch len(candidates) {
	case 0:
		o.logger.Debug("orchestrator.select.none", "state_version", state.Version())
		return nil, nil
	case 1:
		o.logger.Info("orchestrator.select.single", "agent", candidates[0].Name, "state_version", state.Version())
		return &candidates[0], nil
	}

	chosen := o.selectAmong(ctx, candidates, state, history)
	o.logger.Info("orchestrator.select.chosen", "agent", chosen.Name, "candidates", len(candidates), "state_version", state.Version())
	return chosen, nil
}

// selectAmong consults the external selector and validates its answer,
// defaulting to the first-registered candidate on any failure.
func (o *Orchestrator) selectAmong(ctx context.Context, candidates []core.AgentDescriptor, state core.Snapshot, history []core.Message) *core.AgentDescriptor {
	fallback := &candidates[0]
	if o.selector == nil {
		return fallback
	}

	selCtx, cancel := context.WithTimeout(ctx, o.selectionTimeout)
	defer cancel()

	name, err := o.selector(selCtx, candidates, state, history)
	if err != nil {
		o.logger.Warn("orchestrator.select.fallback", "error", err.Error(), "fallback", fallback.Name)
		return fallback
	}
	for i := range candidates {
		if candidates[i].Name == name {
			return &candidates[i]
		}
	}
	o.logger.Warn("orchestrator.select.fallback",
		"error", fmt.Errorf("%w: %s", core.ErrInvalidSelection, name).Error(),
		"fallback", fallback.Name)
	return fallback
}

// Dispatch invokes the named agent's decision function for one turn under
// the decision timeout. On deadline expiry the returned error wraps
// context.DeadlineExceeded so the caller can reply with a safe retry message
// while leaving state untouched.
func (o *Orchestrator) Dispatch(ctx context.Context, desc core.AgentDescriptor, turn *core.Turn) (*core.Decision, error) {
	decCtx, cancel := context.WithTimeout(ctx, o.decisionTimeout)
	defer cancel()

	started := time.Now()
	decision, err := desc.Decide(decCtx, turn)
	elapsed := time.Since(started)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			o.logger.Warn("orchestrator.decision.timeout", "agent", desc.Name, "elapsed_ms", elapsed.Milliseconds())
			return nil, fmt.Errorf("decision timeout for agent %s: %w", desc.Name, err)
		}
		o.logger.Error("orchestrator.decision.error", "agent", desc.Name, "error", err.Error())
		return nil, fmt.Errorf("decision failed for agent %s: %w", desc.Name, err)
	}
	if decision == nil {
		return nil, fmt.Errorf("agent %s returned no decision", desc.Name)
	}

	o.logger.Info("orchestrator.decision.complete",
		"agent", desc.Name,
		"relinquish", decision.Relinquish,
		"tool_calls", decision.ToolCallsIssued,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return decision, nil
}
