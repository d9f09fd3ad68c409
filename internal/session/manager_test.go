package session

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestManager(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager(time.Hour)
	defer m.Close()

	s := m.Create("user-1")
	if s.UserID != "user-1" || s.Phase != PhaseCapture {
		t.Fatalf("unexpected session: %+v", s)
	}

	updated, err := m.Update(s.ID, func(s *Session) error {
		_, err := s.AddPerson("Alice")
		return err
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(updated.People) != 1 {
		t.Errorf("expected 1 person, got %d", len(updated.People))
	}

	// Snapshots are detached from the live session.
	updated.People[0].Name = "Mallory"
	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.People[0].Name != "Alice" {
		t.Errorf("snapshot aliased live session: %q", got.People[0].Name)
	}

	wantErr := errors.New("boom")
	if _, err := m.Update(s.ID, func(*Session) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("expected callback error, got %v", err)
	}

	if _, err := m.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	m.Delete(s.ID)
	if m.Len() != 0 {
		t.Errorf("expected 0 sessions, got %d", m.Len())
	}
}

func TestManager_EvictIdle(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager(0)
	defer m.Close()
	m.ttl = time.Minute

	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	stale := m.Create("")
	now = now.Add(45 * time.Second)
	fresh := m.Create("")
	now = now.Add(30 * time.Second)

	if n := m.evictIdle(); n != 1 {
		t.Fatalf("evicted %d sessions, want 1", n)
	}
	if _, err := m.Get(stale.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("stale session survived: %v", err)
	}
	if _, err := m.Get(fresh.ID); err != nil {
		t.Errorf("fresh session evicted: %v", err)
	}
}
