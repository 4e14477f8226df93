package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hoanghai1803/driverpro/internal/identity"
	"github.com/hoanghai1803/driverpro/internal/models"
	"github.com/hoanghai1803/driverpro/internal/preferences"
	"github.com/hoanghai1803/driverpro/internal/storage"
)

// fakeAuth is a scriptable AuthClient.
type fakeAuth struct {
	mu           sync.Mutex
	ch           chan *models.Identity
	current      *models.Identity
	unsubscribed bool

	anonFailures int   // number of anonymous attempts that fail first
	anonErr      error // error for failing anonymous attempts
	customToken  string
	silent       bool // sign-ins succeed but never notify

	anonCalls   int
	customCalls int
}

func (f *fakeAuth) Subscribe() (<-chan *models.Identity, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch = make(chan *models.Identity, 1)
	f.ch <- f.current
	ch := f.ch
	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.unsubscribed {
			f.unsubscribed = true
			close(ch)
		}
	}, nil
}

func (f *fakeAuth) publish(ident *models.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = ident
	if f.silent || f.unsubscribed {
		return
	}
	select {
	case <-f.ch:
	default:
	}
	f.ch <- ident
}

func (f *fakeAuth) SignInAnonymously(context.Context) (*models.Identity, error) {
	f.mu.Lock()
	f.anonCalls++
	if f.anonFailures > 0 {
		f.anonFailures--
		f.mu.Unlock()
		return nil, f.anonErr
	}
	f.mu.Unlock()

	ident := &models.Identity{UID: "anon-uid", Provider: models.ProviderAnonymous}
	f.publish(ident)
	return ident, nil
}

func (f *fakeAuth) SignInWithCustomToken(_ context.Context, token string) (*models.Identity, error) {
	f.mu.Lock()
	f.customCalls++
	f.mu.Unlock()

	if token != f.customToken {
		return nil, errors.New("bad token")
	}
	ident := &models.Identity{UID: "custom-uid", Provider: models.ProviderCustom}
	f.publish(ident)
	return ident, nil
}

func (f *fakeAuth) calls() (anon, custom int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.anonCalls, f.customCalls
}

func (f *fakeAuth) isUnsubscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubscribed
}

// fakePrefs is a PreferenceLoader returning fixed results.
type fakePrefs struct {
	prefs models.UserPreferences
	found bool
	err   error
	uids  []string
}

func (f *fakePrefs) Load(_ context.Context, uid string) (models.UserPreferences, bool, error) {
	f.uids = append(f.uids, uid)
	if f.err != nil {
		return models.UserPreferences{}, false, f.err
	}
	if !f.found {
		return models.DefaultPreferences(), false, nil
	}
	return f.prefs, true, nil
}

// connectTo returns a Connector that always yields the given backend.
func connectTo(auth AuthClient, prefs PreferenceLoader) Connector {
	return func(context.Context) (*Backend, error) {
		return &Backend{Auth: auth, Preferences: prefs}, nil
	}
}

// fastOptions keeps retries and timeouts short for tests.
func fastOptions() Options {
	return Options{
		IdentityTimeout: time.Second,
		SignInAttempts:  3,
		RetryBackoff:    time.Millisecond,
	}
}

// newStoreBackend wires a real identity service and preference repository
// over an in-memory SQLite store.
func newStoreBackend(t *testing.T, secret string) (*storage.Store, *identity.Service, Connector) {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	store := storage.NewStore(db)
	svc := identity.NewService(store, secret)
	repo := preferences.NewRepository(store, "test-app")

	connect := func(ctx context.Context) (*Backend, error) {
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}
		return &Backend{Auth: svc.NewClient(), Preferences: repo}, nil
	}
	return store, svc, connect
}
