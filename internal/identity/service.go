// Package identity establishes who a dashboard user is: anonymously, or from
// a signed one-time credential handed to the server out of band.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hoanghai1803/driverpro/internal/models"
	"github.com/hoanghai1803/driverpro/internal/observability"
)

// Issuer is the issuer claim of custom tokens minted by this service.
const Issuer = "driverpro"

var (
	// ErrInvalidToken is returned when a custom token fails verification.
	ErrInvalidToken = errors.New("invalid custom token")

	// ErrCustomTokensDisabled is returned when no signing secret is configured.
	ErrCustomTokensDisabled = errors.New("custom tokens disabled: no secret configured")
)

// Repository persists identities.
type Repository interface {
	CreateIdentity(ctx context.Context, uid, provider string) (*models.Identity, error)
	UpsertIdentity(ctx context.Context, uid, provider string) (*models.Identity, error)
}

// Service creates and verifies identities.
type Service struct {
	repo   Repository
	secret []byte
}

// NewService creates a Service. An empty secret disables custom tokens.
func NewService(repo Repository, secret string) *Service {
	return &Service{repo: repo, secret: []byte(secret)}
}

// SignInAnonymously creates a brand-new anonymous identity.
func (s *Service) SignInAnonymously(ctx context.Context) (*models.Identity, error) {
	ident, err := s.repo.CreateIdentity(ctx, uuid.NewString(), models.ProviderAnonymous)
	if err != nil {
		observability.SignInsTotal.WithLabelValues(models.ProviderAnonymous, "error").Inc()
		return nil, fmt.Errorf("anonymous sign-in: %w", err)
	}
	observability.SignInsTotal.WithLabelValues(models.ProviderAnonymous, "ok").Inc()
	slog.Info("signed in anonymously", "uid", ident.UID)
	return ident, nil
}

// SignInWithCustomToken verifies token and signs in as its subject,
// creating the identity on first use.
func (s *Service) SignInWithCustomToken(ctx context.Context, token string) (*models.Identity, error) {
	uid, err := s.Verify(token)
	if err != nil {
		observability.SignInsTotal.WithLabelValues(models.ProviderCustom, "rejected").Inc()
		return nil, err
	}

	ident, err := s.repo.UpsertIdentity(ctx, uid, models.ProviderCustom)
	if err != nil {
		observability.SignInsTotal.WithLabelValues(models.ProviderCustom, "error").Inc()
		return nil, fmt.Errorf("custom token sign-in: %w", err)
	}
	observability.SignInsTotal.WithLabelValues(models.ProviderCustom, "ok").Inc()
	slog.Info("signed in with custom token", "uid", ident.UID)
	return ident, nil
}

// MintCustomToken signs a custom token for uid that expires after ttl.
func (s *Service) MintCustomToken(uid string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrCustomTokensDisabled
	}
	if uid == "" {
		return "", errors.New("minting custom token: empty uid")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   uid,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing custom token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, issuer and expiry of a custom token and
// returns its subject.
func (s *Service) Verify(token string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrCustomTokensDisabled
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
