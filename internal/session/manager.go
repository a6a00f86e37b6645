package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager keeps sessions in memory keyed by a random id and forgets them
// after ttl of inactivity. Nothing is persisted.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*State
	ttl      time.Duration
	provider string
	apiKey   string
	now      func() time.Time
}

// NewManager creates a Manager. New sessions start with provider and, if
// non-empty, apiKey as their credentials.
func NewManager(ttl time.Duration, provider, apiKey string) *Manager {
	return &Manager{
		sessions: make(map[string]*State),
		ttl:      ttl,
		provider: provider,
		apiKey:   apiKey,
		now:      time.Now,
	}
}

// Create starts a new session with a fresh id.
func (m *Manager) Create() *State {
	s := New(uuid.NewString(), m.provider)
	if m.apiKey != "" {
		s.SetCredentials(m.provider, m.apiKey)
	}
	s.touch(m.now())

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

// Get returns a live session and refreshes its idle timer.
func (m *Manager) Get(id string) (*State, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok && m.expired(s) {
		delete(m.sessions, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	s.touch(m.now())
	return s, true
}

// GetOrCreate returns the session for id, or a new one when id is unknown
// or expired. created reports which.
func (m *Manager) GetOrCreate(id string) (s *State, created bool) {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s, false
		}
	}
	return m.Create(), true
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Len returns the number of tracked sessions, expired or not.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) expired(s *State) bool {
	return m.ttl > 0 && m.now().Sub(s.idleSince()) > m.ttl
}
