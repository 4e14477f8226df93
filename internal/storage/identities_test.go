package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/hoanghai1803/driverpro/internal/models"
)

func TestCreateIdentity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ident, err := store.CreateIdentity(ctx, "uid-1", models.ProviderAnonymous)
	if err != nil {
		t.Fatalf("CreateIdentity() error: %v", err)
	}
	if ident.UID != "uid-1" {
		t.Errorf("UID = %q, want %q", ident.UID, "uid-1")
	}
	if !ident.IsAnonymous() {
		t.Errorf("Provider = %q, want %q", ident.Provider, models.ProviderAnonymous)
	}
	if ident.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestCreateIdentity_Duplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateIdentity(ctx, "uid-1", models.ProviderAnonymous); err != nil {
		t.Fatalf("CreateIdentity() error: %v", err)
	}
	if _, err := store.CreateIdentity(ctx, "uid-1", models.ProviderAnonymous); err == nil {
		t.Fatal("expected error for duplicate uid, got nil")
	}
}

func TestCreateIdentity_RejectsUnknownProvider(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.CreateIdentity(context.Background(), "uid-1", "password"); err == nil {
		t.Fatal("expected error for unknown provider, got nil")
	}
}

func TestGetIdentity_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetIdentity(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestUpsertIdentity_KeepsProvider(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.UpsertIdentity(ctx, "uid-1", models.ProviderCustom); err != nil {
		t.Fatalf("first UpsertIdentity() error: %v", err)
	}
	ident, err := store.UpsertIdentity(ctx, "uid-1", models.ProviderAnonymous)
	if err != nil {
		t.Fatalf("second UpsertIdentity() error: %v", err)
	}
	if ident.Provider != models.ProviderCustom {
		t.Errorf("Provider = %q, want %q", ident.Provider, models.ProviderCustom)
	}

	n, err := store.CountIdentities(ctx, "")
	if err != nil {
		t.Fatalf("CountIdentities() error: %v", err)
	}
	if n != 1 {
		t.Errorf("got %d identities, want 1", n)
	}
}

func TestCountIdentities_ByProvider(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, uid := range []string{"a", "b"} {
		if _, err := store.CreateIdentity(ctx, uid, models.ProviderAnonymous); err != nil {
			t.Fatalf("CreateIdentity(%q) error: %v", uid, err)
		}
	}
	if _, err := store.CreateIdentity(ctx, "c", models.ProviderCustom); err != nil {
		t.Fatalf("CreateIdentity(c) error: %v", err)
	}

	anon, err := store.CountIdentities(ctx, models.ProviderAnonymous)
	if err != nil {
		t.Fatalf("CountIdentities() error: %v", err)
	}
	if anon != 2 {
		t.Errorf("anonymous count = %d, want 2", anon)
	}
}
