package session

import (
	"errors"
	"testing"

	"github.com/charleneleong-ai/multi-agent-travel-concierge/core"
)

func TestInMemoryStore_CreateGetDelete(t *testing.T) {
	store := NewInMemoryStore()

	sess, err := store.Create("traveler")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.ID == "" || sess.UserID != "traveler" {
		t.Errorf("unexpected session: %+v", sess)
	}

	got, err := store.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != sess {
		t.Error("store should hand out the live session object")
	}

	if err := store.Delete(sess.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(sess.ID); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("want ErrSessionNotFound, got %v", err)
	}
}

func TestInMemoryStore_GetUnknown(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Get("ghost"); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("want ErrSessionNotFound, got %v", err)
	}
}
