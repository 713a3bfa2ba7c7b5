package core

import (
	"context"
	"sync"
	"testing"
)

func TestToolContext_SetStateStampsAgent(t *testing.T) {
	state := NewSharedState()
	tc := NewToolContext(context.Background(), "s1", state, "travel_planner", "call-1", nil)

	version, err := tc.SetState("trip", map[string]any{"destination": "Singapore"})
	if err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if version == 0 {
		t.Error("SetState should return the new version")
	}

	got, ok := tc.GetState("trip")
	if !ok {
		t.Fatal("GetState should see the write")
	}
	if got.UpdatedBy != "travel_planner" {
		t.Errorf("UpdatedBy = %q, want travel_planner", got.UpdatedBy)
	}
}

func TestToolContext_RejectsReservedKeys(t *testing.T) {
	state := NewSharedState()
	tc := NewToolContext(context.Background(), "s1", state, "agent", "call-1", nil)

	if _, err := tc.SetState("__routing", map[string]any{"x": 1}); err == nil {
		t.Error("reserved prefix should be rejected")
	}
	if tc.StateVersion() != 0 {
		t.Error("rejected write must not bump version")
	}
}

func TestToolContext_ConcurrentUpdatesSerialize(t *testing.T) {
	state := NewSharedState()
	const n = 32

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tc := NewToolContext(context.Background(), "s1", state, "agent", NewID(), nil)
			_, err := tc.UpdateState("counter", func(prev Value, ok bool) (Value, error) {
				count := 0
				if ok {
					count = prev.Data["count"].(int)
				}
				return Value{Data: map[string]any{"count": count + 1}}, nil
			})
			if err != nil {
				t.Errorf("UpdateState failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := state.Get("counter")
	if got.Data["count"] != n {
		t.Errorf("lost updates: count = %v, want %d", got.Data["count"], n)
	}
}

func TestToolContext_RelinquishSignal(t *testing.T) {
	tc := NewToolContext(context.Background(), "s1", NewSharedState(), "agent", "call-1", nil)

	if tc.RelinquishSignaled() {
		t.Error("fresh context should not signal relinquish")
	}
	tc.SignalRelinquish()
	if !tc.RelinquishSignaled() {
		t.Error("signal should be observable")
	}
}
