// Package session owns the per-browser dashboard session: the bearer token
// entered on the login screen, the identity resolved for it, the loaded
// preferences, and the one-way readiness transition the views wait on.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/hoanghai1803/driverpro/internal/models"
)

// DemoToken is the sentinel token injected by the "skip" path of the login
// screen.
const DemoToken = "DEMO_MODE"

// MinTokenLength is the shortest bearer token the login screen accepts.
const MinTokenLength = 5

var (
	// ErrTokenTooShort is returned for tokens shorter than MinTokenLength.
	ErrTokenTooShort = errors.New("token must be at least 5 characters")

	// ErrUnauthenticated is returned when bootstrapping a session with no token.
	ErrUnauthenticated = errors.New("no token: session is unauthenticated")
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusConnecting      Status = "connecting"
	StatusReady           Status = "ready"
	StatusFailed          Status = "failed"
)

// ValidateToken checks a bearer token entered on the login screen.
func ValidateToken(token string) error {
	if token == DemoToken {
		return nil
	}
	if len(token) < MinTokenLength {
		return ErrTokenTooShort
	}
	return nil
}

// Session is the explicit session context passed to the views. Views only
// read it; UpdatePreferences is reserved for the settings flow.
type Session struct {
	id    string
	token string

	mu          sync.RWMutex
	status      Status
	identity    *models.Identity
	prefs       models.UserPreferences
	err         error
	cancel      context.CancelFunc
	unsubscribe func()
	closed      bool

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates an unauthenticated-or-connecting session with default
// preferences. The token is held in memory only.
func New(id, token string) *Session {
	status := StatusUnauthenticated
	if token != "" {
		status = StatusConnecting
	}
	return &Session{
		id:     id,
		token:  token,
		status: status,
		prefs:  models.DefaultPreferences(),
		ready:  make(chan struct{}),
	}
}

// ID returns the opaque session id.
func (s *Session) ID() string { return s.id }

// HasToken reports whether a bearer token was supplied.
func (s *Session) HasToken() bool { return s.token != "" }

// DemoMode reports whether the session was opened through the skip path.
func (s *Session) DemoMode() bool { return s.token == DemoToken }

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Ready reports whether bootstrap has finished, successfully or not. Once
// true it stays true.
func (s *Session) Ready() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// wait blocks until the session is ready or ctx is done.
func (s *Session) wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Identity returns a copy of the resolved identity, or nil.
func (s *Session) Identity() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	ident := *s.identity
	return &ident
}

// UserID returns the resolved identity's uid, or "".
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.UID
}

// Preferences returns the in-memory preferences.
func (s *Session) Preferences() models.UserPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Err returns the bootstrap failure, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// UpdatePreferences replaces the in-memory preferences after a successful
// save.
func (s *Session) UpdatePreferences(p models.UserPreferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = p
}

// Close cancels a running bootstrap and drops the identity subscription.
func (s *Session) Close() {
	s.mu.Lock()
	cancel, unsubscribe := s.cancel, s.unsubscribe
	s.cancel, s.unsubscribe = nil, nil
	s.closed = true
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Session) setCancel(cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel = cancel
}

// setUnsubscribe stores the identity unsubscribe func, or runs it at once
// when the session was already closed.
func (s *Session) setUnsubscribe(unsubscribe func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsubscribe()
		return
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

// complete records the identity and preferences and marks the session ready.
func (s *Session) complete(ident *models.Identity, prefs models.UserPreferences) {
	s.readyOnce.Do(func() {
		s.mu.Lock()
		s.identity = ident
		s.prefs = prefs
		s.status = StatusReady
		s.mu.Unlock()
		close(s.ready)
	})
}

// fail marks the session ready in the failed state.
func (s *Session) fail(err error) {
	s.readyOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.status = StatusFailed
		s.mu.Unlock()
		close(s.ready)
	})
}
