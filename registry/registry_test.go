package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
)

func descriptor(name string, eligible func(core.Snapshot) bool) core.AgentDescriptor {
	if eligible == nil {
		eligible = func(core.Snapshot) bool { return true }
	}
	return core.AgentDescriptor{
		Name:     name,
		Eligible: eligible,
		Decide: func(ctx context.Context, turn *core.Turn) (*core.Decision, error) {
			return &core.Decision{Reply: "ok"}, nil
		},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := New()

	if err := r.Register(descriptor("travel_planner", nil)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	got, err := r.Get("travel_planner")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "travel_planner" {
		t.Errorf("Name = %q", got.Name)
	}
	if !r.Has("travel_planner") || r.Len() != 1 {
		t.Error("Has/Len inconsistent after registration")
	}
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := New()

	if err := r.Register(descriptor("legal_advisor", nil)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	err := r.Register(descriptor("legal_advisor", nil))
	if !errors.Is(err, core.ErrDuplicateAgent) {
		t.Errorf("want ErrDuplicateAgent, got %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("duplicate registration must not change the registry, len = %d", r.Len())
	}
}

func TestRegistry_ValidatesDescriptor(t *testing.T) {
	r := New()

	cases := []core.AgentDescriptor{
		{},
		{Name: "x"},
		{Name: "x", Eligible: func(core.Snapshot) bool { return true }},
	}
	for _, desc := range cases {
		err := r.Register(desc)
		var valErr *core.ValidationError
		if !errors.As(err, &valErr) {
			t.Errorf("descriptor %+v: want ValidationError, got %v", desc, err)
		}
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := New()
	_, err := r.Get("ghost")
	if !errors.Is(err, core.ErrAgentNotFound) {
		t.Errorf("want ErrAgentNotFound, got %v", err)
	}
}

func TestRegistry_EligibleFollowsRegistrationOrder(t *testing.T) {
	r := New()

	hasTrip := func(snap core.Snapshot) bool { return snap.Has("trip") }
	if err := r.Register(descriptor("travel_planner", nil)); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(descriptor("legal_advisor", hasTrip)); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(descriptor("local_expert", hasTrip)); err != nil {
		t.Fatal(err)
	}

	state := core.NewSharedState()
	eligible := r.Eligible(state.Snapshot())
	if len(eligible) != 1 || eligible[0].Name != "travel_planner" {
		t.Fatalf("without trip facts only the planner is eligible, got %+v", names(eligible))
	}

	if _, err := state.Set("trip", core.Value{Data: map[string]any{"destination": "Rome"}}); err != nil {
		t.Fatal(err)
	}
	eligible = r.Eligible(state.Snapshot())
	want := []string{"travel_planner", "legal_advisor", "local_expert"}
	got := names(eligible)
	if len(got) != len(want) {
		t.Fatalf("eligible = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("eligibility order must follow registration order: %v", got)
		}
	}
}

func names(descs []core.AgentDescriptor) []string {
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = d.Name
	}
	return out
}
