package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/orchestrator"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/registry"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/tool"
)

func replyAgent(name, reply string, relinquish bool) core.AgentDescriptor {
	return core.AgentDescriptor{
		Name:     name,
		Eligible: func(core.Snapshot) bool { return true },
		Decide: func(ctx context.Context, turn *core.Turn) (*core.Decision, error) {
			return &core.Decision{Reply: reply, Relinquish: relinquish}, nil
		},
	}
}

func newManager(t *testing.T, reg *registry.Registry, orchFns ...func(o *orchestrator.Options)) *Manager {
	t.Helper()
	orch := orchestrator.New(reg, orchFns...)
	return NewManager(reg, orch, tool.NewInvoker())
}

func startSession(t *testing.T, m *Manager) string {
	t.Helper()
	id, err := m.StartSession("traveler")
	require.NoError(t, err)
	return id
}

func TestPostMessage_EmptyRegistryFallsBack(t *testing.T) {
	m := newManager(t, registry.New())
	id := startSession(t, m)

	reply, err := m.PostMessage(context.Background(), id, "plan me a trip")
	require.NoError(t, err)
	assert.Nil(t, reply.ActiveAgent)
	assert.Equal(t, defaultFallbackReply, reply.Text)

	sess, err := m.Session(id)
	require.NoError(t, err)
	_, ok := sess.State.ActiveAgent()
	assert.False(t, ok)
	assert.Len(t, sess.History(), 2)
}

func TestPostMessage_SingleAgentSticksUntilRelinquish(t *testing.T) {
	reg := registry.New()
	turns := 0
	require.NoError(t, reg.Register(core.AgentDescriptor{
		Name:     "Sightseeing",
		Eligible: func(core.Snapshot) bool { return true },
		Decide: func(ctx context.Context, turn *core.Turn) (*core.Decision, error) {
			turns++
			return &core.Decision{Reply: "seen", Relinquish: turns >= 3}, nil
		},
	}))
	m := newManager(t, reg)
	id := startSession(t, m)

	reply, err := m.PostMessage(context.Background(), id, "what should I see?")
	require.NoError(t, err)
	require.NotNil(t, reply.ActiveAgent)
	assert.Equal(t, "Sightseeing", *reply.ActiveAgent)

	reply, err = m.PostMessage(context.Background(), id, "anything else?")
	require.NoError(t, err)
	require.NotNil(t, reply.ActiveAgent)
	assert.Equal(t, "Sightseeing", *reply.ActiveAgent)

	// Third turn relinquishes; ownership returns to the orchestrator.
	reply, err = m.PostMessage(context.Background(), id, "thanks, done")
	require.NoError(t, err)
	assert.Nil(t, reply.ActiveAgent)

	sess, err := m.Session(id)
	require.NoError(t, err)
	_, ok := sess.State.ActiveAgent()
	assert.False(t, ok)
}

func TestPostMessage_SelectorPicksAmongEligible(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(replyAgent("Flights", "flights here", false)))
	require.NoError(t, reg.Register(replyAgent("Hotels", "hotels here", false)))

	m := newManager(t, reg, func(o *orchestrator.Options) {
		o.Selector = func(ctx context.Context, candidates []core.AgentDescriptor, state core.Snapshot, history []core.Message) (string, error) {
			return "Hotels", nil
		}
	})
	id := startSession(t, m)

	reply, err := m.PostMessage(context.Background(), id, "I need a room")
	require.NoError(t, err)
	require.NotNil(t, reply.ActiveAgent)
	assert.Equal(t, "Hotels", *reply.ActiveAgent)
	assert.Equal(t, "hotels here", reply.Text)
}

func TestPostMessage_SelectorTimeoutFallsBackToFirstRegistered(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(replyAgent("Flights", "flights here", false)))
	require.NoError(t, reg.Register(replyAgent("Hotels", "hotels here", false)))

	m := newManager(t, reg, func(o *orchestrator.Options) {
		o.SelectionTimeout = 20 * time.Millisecond
		o.Selector = func(ctx context.Context, candidates []core.AgentDescriptor, state core.Snapshot, history []core.Message) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}
	})
	id := startSession(t, m)

	reply, err := m.PostMessage(context.Background(), id, "help")
	require.NoError(t, err)
	require.NotNil(t, reply.ActiveAgent)
	assert.Equal(t, "Flights", *reply.ActiveAgent)
}

func TestPostMessage_DecisionTimeoutKeepsStateAndRetries(t *testing.T) {
	reg := registry.New()
	slow := true
	require.NoError(t, reg.Register(core.AgentDescriptor{
		Name:     "Sightseeing",
		Eligible: func(core.Snapshot) bool { return true },
		Decide: func(ctx context.Context, turn *core.Turn) (*core.Decision, error) {
			if slow {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return &core.Decision{Reply: "recovered"}, nil
		},
	}))

	m := newManager(t, reg, func(o *orchestrator.Options) {
		o.DecisionTimeout = 20 * time.Millisecond
	})
	id := startSession(t, m)

	reply, err := m.PostMessage(context.Background(), id, "hello?")
	require.NoError(t, err)
	assert.Equal(t, defaultRetryReply, reply.Text)
	require.NotNil(t, reply.ActiveAgent)
	assert.Equal(t, "Sightseeing", *reply.ActiveAgent)

	sess, err := m.Session(id)
	require.NoError(t, err)
	name, ok := sess.State.ActiveAgent()
	require.True(t, ok)
	assert.Equal(t, "Sightseeing", name, "timeout must leave ownership untouched")

	// The next message retries with the same agent.
	slow = false
	reply, err = m.PostMessage(context.Background(), id, "still there?")
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply.Text)
}

func TestPostMessage_ToolRelinquishClearsOwnership(t *testing.T) {
	reg := registry.New()
	inv := tool.NewInvoker()
	require.NoError(t, inv.Register(tool.NewFunctionTool(
		"confirm_booking", "Completes the trip",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			tc.SignalRelinquish()
			return "confirmed", nil
		},
	)))
	require.NoError(t, reg.Register(core.AgentDescriptor{
		Name:     "travel_planner",
		Eligible: func(core.Snapshot) bool { return true },
		Decide: func(ctx context.Context, turn *core.Turn) (*core.Decision, error) {
			record := turn.Tools.Invoke(ctx, "confirm_booking", map[string]any{})
			require.False(t, record.Failed())
			return &core.Decision{Reply: "booked!", ToolCallsIssued: 1}, nil
		},
	}))

	orch := orchestrator.New(reg)
	m := NewManager(reg, orch, inv)
	id := startSession(t, m)

	reply, err := m.PostMessage(context.Background(), id, "book it")
	require.NoError(t, err)
	assert.Equal(t, "booked!", reply.Text)
	assert.Nil(t, reply.ActiveAgent, "tool relinquish must clear ownership")

	sess, err := m.Session(id)
	require.NoError(t, err)
	assert.Len(t, sess.AuditLog(), 1)
}

func TestPostMessage_TerminatedSessionRejectsTurns(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(replyAgent("Sightseeing", "hi", false)))
	m := newManager(t, reg)
	id := startSession(t, m)

	require.NoError(t, m.EndSession(id))

	_, err := m.PostMessage(context.Background(), id, "hello?")
	assert.True(t, errors.Is(err, core.ErrSessionTerminated))

	// History stays readable after termination.
	sess, err := m.Session(id)
	require.NoError(t, err)
	assert.True(t, sess.Terminated())
}

func TestPostMessage_UnknownSession(t *testing.T) {
	m := newManager(t, registry.New())
	_, err := m.PostMessage(context.Background(), "nope", "hi")
	assert.True(t, errors.Is(err, core.ErrSessionNotFound))
}
