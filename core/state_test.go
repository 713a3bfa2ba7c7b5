package core

import (
	"errors"
	"sync"
	"testing"
)

func TestSharedState_SetGetReadYourWrites(t *testing.T) {
	s := NewSharedState()

	v1, err := s.Set("trip", Value{Data: map[string]any{"destination": "Singapore"}, UpdatedBy: "planner"})
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := s.Get("trip")
	if !ok {
		t.Fatal("Get after Set should find the key")
	}
	if got.Data["destination"] != "Singapore" {
		t.Errorf("read-your-writes violated: %+v", got)
	}
	if got.UpdatedBy != "planner" {
		t.Errorf("UpdatedBy not stamped: %q", got.UpdatedBy)
	}

	v2, err := s.Set("trip", Value{Data: map[string]any{"destination": "Tokyo"}})
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v2 <= v1 {
		t.Errorf("version must strictly increase: %d then %d", v1, v2)
	}
	got, _ = s.Get("trip")
	if got.Data["destination"] != "Tokyo" {
		t.Errorf("second write not visible: %+v", got)
	}
}

func TestSharedState_VersionStrictlyIncreases(t *testing.T) {
	s := NewSharedState()
	var last uint64
	for i := 0; i < 20; i++ {
		v, err := s.Set("k", Value{Data: map[string]any{"i": i}})
		if err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if v <= last {
			t.Fatalf("version did not increase: %d after %d", v, last)
		}
		last = v
	}
	if s.Version() != last {
		t.Errorf("Version() = %d, want %d", s.Version(), last)
	}
}

func TestSharedState_RejectsReservedAndEmptyKeys(t *testing.T) {
	s := NewSharedState()

	if _, err := s.Set("", Value{}); err == nil {
		t.Error("empty key should be rejected")
	}
	_, err := s.Set("__internal", Value{})
	if err == nil {
		t.Fatal("reserved key should be rejected")
	}
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("want ValidationError, got %T", err)
	}
	if s.Version() != 0 {
		t.Errorf("failed writes must not bump the version, got %d", s.Version())
	}
}

func TestSharedState_ConcurrentUpdatesLoseNothing(t *testing.T) {
	s := NewSharedState()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update("counter", func(prev Value, ok bool) (Value, error) {
				count := 0
				if ok {
					count = prev.Data["count"].(int)
				}
				return Value{Data: map[string]any{"count": count + 1}}, nil
			})
			if err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, ok := s.Get("counter")
	if !ok {
		t.Fatal("counter key missing")
	}
	if got.Data["count"] != n {
		t.Errorf("lost updates: count = %v, want %d", got.Data["count"], n)
	}
	if s.Version() != uint64(n) {
		t.Errorf("version = %d, want %d", s.Version(), n)
	}
}

func TestSharedState_ActiveAgentTransitions(t *testing.T) {
	s := NewSharedState()

	if _, ok := s.ActiveAgent(); ok {
		t.Error("fresh state should have no active agent")
	}
	v1 := s.SetActiveAgent("travel_planner")
	name, ok := s.ActiveAgent()
	if !ok || name != "travel_planner" {
		t.Errorf("ActiveAgent = %q, %v", name, ok)
	}
	v2 := s.ClearActiveAgent()
	if v2 <= v1 {
		t.Errorf("clear must bump version: %d then %d", v1, v2)
	}
	if _, ok := s.ActiveAgent(); ok {
		t.Error("active agent should be cleared")
	}
}

func TestSnapshot_IsImmutableCopy(t *testing.T) {
	s := NewSharedState()
	if _, err := s.Set("trip", Value{Data: map[string]any{"destination": "Lisbon"}}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.SetActiveAgent("local_expert")

	snap := s.Snapshot()
	if _, err := s.Set("trip", Value{Data: map[string]any{"destination": "Porto"}}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.ClearActiveAgent()

	got, ok := snap.Get("trip")
	if !ok || got.Data["destination"] != "Lisbon" {
		t.Errorf("snapshot must not see later writes: %+v", got)
	}
	if name, ok := snap.ActiveAgent(); !ok || name != "local_expert" {
		t.Errorf("snapshot active agent changed: %q, %v", name, ok)
	}
	if snap.Version() == s.Version() {
		t.Error("snapshot version should lag live state after writes")
	}

	// Mutating data obtained from a snapshot must not leak back.
	got.Data["destination"] = "Madrid"
	again, _ := snap.Get("trip")
	if again.Data["destination"] != "Lisbon" {
		t.Error("snapshot values must be defensive copies")
	}
}
