package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hoanghai1803/driverpro/internal/models"
	"github.com/hoanghai1803/driverpro/internal/observability"
)

var (
	// ErrIdentityTimeout is returned when no identity is established within
	// the configured timeout.
	ErrIdentityTimeout = errors.New("timed out waiting for identity")

	// ErrSignInFailed is returned when every anonymous sign-in attempt fails.
	ErrSignInFailed = errors.New("anonymous sign-in failed")

	// ErrSubscriptionClosed is returned when the identity channel closes
	// before an identity arrives.
	ErrSubscriptionClosed = errors.New("identity subscription closed")
)

// AuthClient is the per-session view of the identity service.
type AuthClient interface {
	Subscribe() (<-chan *models.Identity, func(), error)
	SignInAnonymously(ctx context.Context) (*models.Identity, error)
	SignInWithCustomToken(ctx context.Context, token string) (*models.Identity, error)
}

// PreferenceLoader loads stored preferences for an identity.
type PreferenceLoader interface {
	Load(ctx context.Context, uid string) (models.UserPreferences, bool, error)
}

// Backend is what a session talks to once it is connected.
type Backend struct {
	Auth        AuthClient
	Preferences PreferenceLoader
}

// Connector initializes the backend for one session.
type Connector func(ctx context.Context) (*Backend, error)

// Options tune the bootstrap sequence.
type Options struct {
	// InitialAuthToken is an optional one-time credential tried before
	// falling back to anonymous sign-in.
	InitialAuthToken string

	// IdentityTimeout bounds the whole identity phase. Zero means 10s.
	IdentityTimeout time.Duration

	// SignInAttempts is how many times anonymous sign-in is tried. Zero
	// means 3.
	SignInAttempts int

	// RetryBackoff is the base delay between attempts; attempt n waits
	// n*RetryBackoff.
	RetryBackoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.IdentityTimeout <= 0 {
		o.IdentityTimeout = 10 * time.Second
	}
	if o.SignInAttempts <= 0 {
		o.SignInAttempts = 3
	}
	if o.RetryBackoff < 0 {
		o.RetryBackoff = 0
	}
	return o
}

// Bootstrapper runs the token → identity → preferences → ready sequence.
type Bootstrapper struct {
	connect Connector
	opts    Options
}

// NewBootstrapper creates a Bootstrapper.
func NewBootstrapper(connect Connector, opts Options) *Bootstrapper {
	return &Bootstrapper{connect: connect, opts: opts.withDefaults()}
}

// Run bootstraps s. It returns ErrUnauthenticated without touching the
// session when no token is held. Every other outcome marks the session
// ready exactly once: StatusReady on success, StatusFailed when the backend
// cannot start or no identity can be established. A failed preference fetch
// is logged and the defaults are kept.
func (b *Bootstrapper) Run(ctx context.Context, s *Session) error {
	// 1. No token, nothing to do.
	if !s.HasToken() {
		return ErrUnauthenticated
	}
	start := time.Now()

	// 2. Initialize the backend.
	backend, err := b.connect(ctx)
	if err != nil {
		err = fmt.Errorf("initializing backend: %w", err)
		slog.Error("failed to initialize backend", "session", s.ID(), "error", err)
		b.fail(s, err)
		return err
	}

	// 3. Resolve an identity.
	ident, err := b.resolveIdentity(ctx, s, backend.Auth)
	if err != nil {
		slog.Error("failed to establish identity", "session", s.ID(), "error", err)
		b.fail(s, err)
		return err
	}

	// 4. Load preferences, falling back to defaults.
	prefs, found, err := backend.Preferences.Load(ctx, ident.UID)
	if err != nil {
		slog.Error("error fetching user config", "session", s.ID(), "uid", ident.UID, "error", err)
		prefs = models.DefaultPreferences()
	} else if !found {
		slog.Debug("no stored preferences, using defaults", "uid", ident.UID)
	}

	// 5. Ready.
	s.complete(ident, prefs)
	observability.BootstrapsTotal.WithLabelValues(string(StatusReady)).Inc()
	observability.BootstrapDuration.Observe(time.Since(start).Seconds())
	slog.Info("session ready",
		"session", s.ID(),
		"uid", ident.UID,
		"provider", ident.Provider,
		"demo", s.DemoMode(),
		"duration", time.Since(start).String(),
	)
	return nil
}

func (b *Bootstrapper) fail(s *Session, err error) {
	s.fail(err)
	observability.BootstrapsTotal.WithLabelValues(string(StatusFailed)).Inc()
}

// resolveIdentity subscribes to identity changes and returns the first
// non-nil identity. On the first signed-out notification it starts a
// sign-in. The subscription stays open until the session is closed.
func (b *Bootstrapper) resolveIdentity(ctx context.Context, s *Session, auth AuthClient) (*models.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.IdentityTimeout)
	defer cancel()

	ch, unsubscribe, err := auth.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("subscribing to identity changes: %w", err)
	}
	s.setUnsubscribe(unsubscribe)

	signInStarted := false
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w after %s", ErrIdentityTimeout, b.opts.IdentityTimeout)
			}
			return nil, ctx.Err()

		case ident, ok := <-ch:
			if !ok {
				return nil, ErrSubscriptionClosed
			}
			if ident != nil {
				return ident, nil
			}
			if signInStarted {
				continue
			}
			signInStarted = true
			if err := b.signIn(ctx, auth); err != nil {
				return nil, err
			}
		}
	}
}

// signIn tries the initial custom token, then anonymous sign-in with
// bounded retries.
func (b *Bootstrapper) signIn(ctx context.Context, auth AuthClient) error {
	if tok := b.opts.InitialAuthToken; tok != "" {
		_, err := auth.SignInWithCustomToken(ctx, tok)
		if err == nil {
			return nil
		}
		slog.Warn("error signing in with custom token, signing in anonymously", "error", err)
	}

	var lastErr error
	for attempt := 1; attempt <= b.opts.SignInAttempts; attempt++ {
		_, err := auth.SignInAnonymously(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		slog.Warn("anonymous sign-in failed",
			"attempt", attempt,
			"max_attempts", b.opts.SignInAttempts,
			"error", err,
		)

		if attempt == b.opts.SignInAttempts {
			break
		}
		timer := time.NewTimer(time.Duration(attempt) * b.opts.RetryBackoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w after %s: %w", ErrIdentityTimeout, b.opts.IdentityTimeout, lastErr)
			}
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrSignInFailed, b.opts.SignInAttempts, lastErr)
}
