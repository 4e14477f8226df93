package handlers

import (
	"context"
	"html/template"
	"net/http"
	"testing"
	"time"

	"github.com/hoanghai1803/driverpro/internal/identity"
	"github.com/hoanghai1803/driverpro/internal/opportunities"
	"github.com/hoanghai1803/driverpro/internal/preferences"
	"github.com/hoanghai1803/driverpro/internal/session"
	"github.com/hoanghai1803/driverpro/internal/settings"
	"github.com/hoanghai1803/driverpro/internal/storage"
	"github.com/hoanghai1803/driverpro/internal/web"
)

// testEnv wires the real stack over an in-memory SQLite store with no seed
// latency.
type testEnv struct {
	store    *storage.Store
	repo     *preferences.Repository
	sessions *session.Manager
	source   *opportunities.Source
	settings *settings.Service
	tmpl     *template.Template
}

// newTestStore creates an in-memory SQLite store with migrations applied. It
// registers a cleanup function to close the database when the test
// completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return storage.NewStore(db)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newTestStore(t)
	repo := preferences.NewRepository(store, "test-app")
	ids := identity.NewService(store, "test-secret")

	connect := func(ctx context.Context) (*session.Backend, error) {
		return &session.Backend{Auth: ids.NewClient(), Preferences: repo}, nil
	}
	boot := session.NewBootstrapper(connect, session.Options{
		IdentityTimeout: 2 * time.Second,
		SignInAttempts:  1,
	})
	sessions := session.NewManager(boot)
	t.Cleanup(sessions.Close)

	tmpl, err := web.Templates()
	if err != nil {
		t.Fatalf("parsing templates: %v", err)
	}

	return &testEnv{
		store:    store,
		repo:     repo,
		sessions: sessions,
		source:   opportunities.NewSource(0),
		settings: settings.NewService(repo),
		tmpl:     tmpl,
	}
}

// login opens a session and waits for it to become ready.
func (e *testEnv) login(t *testing.T) *session.Session {
	t.Helper()

	s, err := e.sessions.Login("driver-token")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for s.Status() == session.StatusConnecting {
		if time.Now().After(deadline) {
			t.Fatal("session never became ready")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if s.Status() != session.StatusReady {
		t.Fatalf("session status = %q (err: %v), want ready", s.Status(), s.Err())
	}
	return s
}

// withSession attaches the session cookie for s to r.
func withSession(r *http.Request, s *session.Session) *http.Request {
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: s.ID()})
	return r
}
