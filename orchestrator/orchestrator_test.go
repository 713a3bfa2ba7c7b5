package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
	"github.com/charleneleong-ai/multi-agent-travel-concierge/registry"
)

func descriptor(name string, eligible func(core.Snapshot) bool) core.AgentDescriptor {
	if eligible == nil {
		eligible = func(core.Snapshot) bool { return true }
	}
	return core.AgentDescriptor{
		Name:     name,
		Eligible: eligible,
		Decide: func(ctx context.Context, turn *core.Turn) (*core.Decision, error) {
			return &core.Decision{Reply: "from " + name}, nil
		},
	}
}

func TestSelect_NoEligibleAgents(t *testing.T) {
	reg := registry.New()
	o := New(reg)

	start := time.Now()
	desc, err := o.Select(context.Background(), core.NewSharedState().Snapshot(), nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if desc != nil {
		t.Errorf("expected no selection, got %q", desc.Name)
	}
	if time.Since(start) > time.Second {
		t.Error("empty selection must return promptly")
	}
}

func TestSelect_SingleEligibleSkipsSelector(t *testing.T) {
	reg := registry.New()
	if err := reg.Register(descriptor("Sightseeing", nil)); err != nil {
		t.Fatal(err)
	}

	selectorCalled := false
	o := New(reg, func(opts *Options) {
		opts.Selector = func(ctx context.Context, candidates []core.AgentDescriptor, state core.Snapshot, history []core.Message) (string, error) {
			selectorCalled = true
			return candidates[0].Name, nil
		}
	})

	desc, err := o.Select(context.Background(), core.NewSharedState().Snapshot(), nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if desc == nil || desc.Name != "Sightseeing" {
		t.Fatalf("want Sightseeing, got %+v", desc)
	}
	if selectorCalled {
		t.Error("selector must not run for a single eligible agent")
	}
}

func TestSelect_MultipleEligibleUsesSelector(t *testing.T) {
	reg := registry.New()
	if err := reg.Register(descriptor("Flights", nil)); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(descriptor("Hotels", nil)); err != nil {
		t.Fatal(err)
	}

	o := New(reg, func(opts *Options) {
		opts.Selector = func(ctx context.Context, candidates []core.AgentDescriptor, state core.Snapshot, history []core.Message) (string, error) {
			return "Hotels", nil
		}
	})

	desc, err := o.Select(context.Background(), core.NewSharedState().Snapshot(), nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if desc.Name != "Hotels" {
		t.Errorf("selector choice ignored, got %q", desc.Name)
	}
}

func TestSelect_SelectorTimeoutFallsBackToFirstRegistered(t *testing.T) {
	reg := registry.New()
	if err := reg.Register(descriptor("Flights", nil)); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(descriptor("Hotels", nil)); err != nil {
		t.Fatal(err)
	}

	o := New(reg, func(opts *Options) {
		opts.SelectionTimeout = 20 * time.Millisecond
		opts.Selector = func(ctx context.Context, candidates []core.AgentDescriptor, state core.Snapshot, history []core.Message) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}
	})

	desc, err := o.Select(context.Background(), core.NewSharedState().Snapshot(), nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if desc.Name != "Flights" {
		t.Errorf("timeout must fall back to first-registered, got %q", desc.Name)
	}
}

func TestSelect_InvalidSelectionFallsBack(t *testing.T) {
	reg := registry.New()
	if err := reg.Register(descriptor("Flights", nil)); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(descriptor("Hotels", nil)); err != nil {
		t.Fatal(err)
	}

	o := New(reg, func(opts *Options) {
		opts.Selector = func(ctx context.Context, candidates []core.AgentDescriptor, state core.Snapshot, history []core.Message) (string, error) {
			return "Imaginary", nil
		}
	})

	desc, err := o.Select(context.Background(), core.NewSharedState().Snapshot(), nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if desc.Name != "Flights" {
		t.Errorf("invalid selection must fall back to first-registered, got %q", desc.Name)
	}
}

func TestSelect_DeterministicForFixedSnapshot(t *testing.T) {
	reg := registry.New()
	if err := reg.Register(descriptor("Flights", nil)); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(descriptor("Hotels", nil)); err != nil {
		t.Fatal(err)
	}

	o := New(reg, func(opts *Options) {
		opts.Selector = func(ctx context.Context, candidates []core.AgentDescriptor, state core.Snapshot, history []core.Message) (string, error) {
			// Pure function of the candidate set.
			return candidates[len(candidates)-1].Name, nil
		}
	})

	snap := core.NewSharedState().Snapshot()
	first, err := o.Select(context.Background(), snap, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := o.Select(context.Background(), snap, nil)
		if err != nil {
			t.Fatal(err)
		}
		if again.Name != first.Name {
			t.Fatalf("select not deterministic: %q then %q", first.Name, again.Name)
		}
	}
}

func TestDispatch_ReturnsDecision(t *testing.T) {
	reg := registry.New()
	o := New(reg)

	desc := descriptor("travel_planner", nil)
	decision, err := o.Dispatch(context.Background(), desc, &core.Turn{SessionID: "s1"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if decision.Reply != "from travel_planner" {
		t.Errorf("reply = %q", decision.Reply)
	}
}

func TestDispatch_TimeoutWrapsDeadline(t *testing.T) {
	reg := registry.New()
	o := New(reg, func(opts *Options) {
		opts.DecisionTimeout = 20 * time.Millisecond
	})

	desc := core.AgentDescriptor{
		Name:     "slow",
		Eligible: func(core.Snapshot) bool { return true },
		Decide: func(ctx context.Context, turn *core.Turn) (*core.Decision, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	_, err := o.Dispatch(context.Background(), desc, &core.Turn{SessionID: "s1"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("want wrapped DeadlineExceeded, got %v", err)
	}
}
