package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/hoanghai1803/driverpro/internal/observability"
)

// Manager tracks live sessions by id and runs their bootstrap in the
// background.
type Manager struct {
	boot *Bootstrapper

	mu       sync.RWMutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// NewManager creates a Manager that bootstraps sessions with boot.
func NewManager(boot *Bootstrapper) *Manager {
	return &Manager{
		boot:     boot,
		sessions: make(map[string]*Session),
	}
}

// Login validates token, registers a new session for it and starts the
// bootstrap. The returned session is connecting; use Wait or Done to block
// on readiness.
func (m *Manager) Login(token string) (*Session, error) {
	if err := ValidateToken(token); err != nil {
		return nil, err
	}

	s := New(uuid.NewString(), token)
	ctx, cancel := context.WithCancel(context.Background())
	s.setCancel(cancel)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	observability.ActiveSessions.Inc()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.boot.Run(ctx, s); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("session bootstrap did not complete", "session", s.ID(), "error", err)
		}
	}()

	slog.Info("session created", "session", s.ID(), "demo", s.DemoMode())
	return s, nil
}

// Demo starts a session with the demo sentinel token.
func (m *Manager) Demo() (*Session, error) {
	return m.Login(DemoToken)
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Logout tears down the session with the given id. It reports whether the
// session existed.
func (m *Manager) Logout(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.Close()
	observability.ActiveSessions.Dec()
	slog.Info("session closed", "session", id)
	return true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close tears down every session and waits for running bootstraps to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		observability.ActiveSessions.Dec()
	}
	m.wg.Wait()
}
