package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hoanghai1803/driverpro/internal/models"
)

// CreateIdentity inserts a new identity. Timestamps are set by the database.
func (s *Store) CreateIdentity(ctx context.Context, uid, provider string) (*models.Identity, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO identities (uid, provider) VALUES (?, ?)`, uid, provider,
	)
	if err != nil {
		return nil, fmt.Errorf("creating identity %q: %w", uid, err)
	}
	return s.GetIdentity(ctx, uid)
}

// GetIdentity returns the identity with the given uid, or ErrNotFound.
func (s *Store) GetIdentity(ctx context.Context, uid string) (*models.Identity, error) {
	var (
		ident                models.Identity
		createdAt, lastLogin string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT uid, provider, created_at, last_sign_in_at
		 FROM identities WHERE uid = ?`, uid,
	).Scan(&ident.UID, &ident.Provider, &createdAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting identity %q: %w", uid, err)
	}
	ident.CreatedAt = parseTime(createdAt)
	ident.LastSignInAt = parseTime(lastLogin)
	return &ident, nil
}

// UpsertIdentity records a sign-in for uid, creating the identity when it
// does not exist yet. The provider of an existing identity is kept.
func (s *Store) UpsertIdentity(ctx context.Context, uid, provider string) (*models.Identity, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO identities (uid, provider) VALUES (?, ?)
		 ON CONFLICT(uid) DO UPDATE SET
			last_sign_in_at = datetime('now')`,
		uid, provider,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting identity %q: %w", uid, err)
	}
	return s.GetIdentity(ctx, uid)
}

// CountIdentities returns the number of identities for the given provider.
// An empty provider counts all identities.
func (s *Store) CountIdentities(ctx context.Context, provider string) (int, error) {
	var (
		n   int
		err error
	)
	if provider == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM identities`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM identities WHERE provider = ?`, provider,
		).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("counting identities: %w", err)
	}
	return n, nil
}
