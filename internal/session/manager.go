package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Manager keeps live sessions in memory and serialises every mutation.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time

	done chan struct{}
	wg   sync.WaitGroup
}

// NewManager creates a Manager. When ttl > 0 a janitor evicts sessions idle for
// longer than ttl; call Close to stop it.
func NewManager(ttl time.Duration) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	if ttl > 0 {
		m.wg.Add(1)
		go m.janitor(ttl / 2)
	}
	return m
}

// Create registers a new session for userID and returns a snapshot of it.
func (m *Manager) Create(userID string) *Session {
	s := New(userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	s.lastUsed = m.now()
	m.sessions[s.ID] = s
	return s.Snapshot()
}

// Get returns a snapshot of the session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastUsed = m.now()
	return s.Snapshot(), nil
}

// Update runs fn against the live session under the manager lock and returns a
// snapshot taken after fn. If fn fails the session is left as fn left it; every
// Session method validates before mutating.
func (m *Manager) Update(id string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastUsed = m.now()
	if err := fn(s); err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

// Delete drops a session. Unknown IDs are ignored.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the janitor.
func (m *Manager) Close() {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
	m.wg.Wait()
}

// evictIdle removes sessions unused for longer than the TTL and returns how many were dropped.
func (m *Manager) evictIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.ttl)
	evicted := 0
	for id, s := range m.sessions {
		if s.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (m *Manager) janitor(interval time.Duration) {
	defer m.wg.Done()
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if n := m.evictIdle(); n > 0 {
				slog.Info("Evicted idle sessions", "count", n)
			}
		}
	}
}
