package session

import (
	"testing"
)

func TestCreateAndGet(t *testing.T) {
	m := NewManager(nil)
	s := m.Create()
	if s.ID == "" {
		t.Fatal("expected non-empty id")
	}
	if s.Screen() != ScreenSignup {
		t.Fatalf("expected signup screen, got %q", s.Screen())
	}
	got, ok := m.Get(s.ID)
	if !ok {
		t.Fatal("Get returned ok=false for existing session")
	}
	if got.ID != s.ID {
		t.Fatalf("Get returned wrong session")
	}
}

func TestCreateGivesDistinctIDs(t *testing.T) {
	m := NewManager(nil)
	a, b := m.Create(), m.Create()
	if a.ID == b.ID {
		t.Fatalf("duplicate id %q", a.ID)
	}
}

func TestList(t *testing.T) {
	m := NewManager(nil)
	m.Create()
	m.Create()
	list := m.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(list))
	}
	if list[0].CreatedAt.After(list[1].CreatedAt) {
		t.Fatal("expected oldest session first")
	}
	if m.Count() != 2 {
		t.Fatalf("expected Count 2, got %d", m.Count())
	}
}

func TestEnd(t *testing.T) {
	m := NewManager(nil)
	s := m.Create()
	if err := m.End(s.ID); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if _, ok := m.Get(s.ID); ok {
		t.Fatal("session still exists after End")
	}
	select {
	case <-s.Done():
	default:
		t.Fatal("done channel not closed after End")
	}
}

func TestEndNotFound(t *testing.T) {
	m := NewManager(nil)
	if err := m.End("nonexistent"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	m := NewManager(nil)
	if _, ok := m.Get("nonexistent"); ok {
		t.Fatal("expected ok=false for nonexistent session")
	}
}

func TestShutdownEndsAll(t *testing.T) {
	m := NewManager(nil)
	a, b := m.Create(), m.Create()
	m.Shutdown()
	if m.Count() != 0 {
		t.Fatalf("expected no sessions, got %d", m.Count())
	}
	for _, s := range []*Session{a, b} {
		select {
		case <-s.Done():
		default:
			t.Fatalf("session %s not ended", s.ID)
		}
	}
}
