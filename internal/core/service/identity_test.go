package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sandwichlab/sandwich-api/internal/core/domain"
)

func TestIdentityResolver_VerifiedIDResolved(t *testing.T) {
	users := newStubUserRepo()
	alice := users.add(&domain.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x"})
	resolver := NewIdentityResolver(users, discardLogger)

	id, err := resolver.Resolve(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != alice.ID {
		t.Errorf("resolved %q, want %q", id, alice.ID)
	}
}

func TestIdentityResolver_UnknownVerifiedID(t *testing.T) {
	resolver := NewIdentityResolver(newStubUserRepo(), discardLogger)

	_, err := resolver.Resolve(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestIdentityResolver_MintsAnonymousPlaceholder(t *testing.T) {
	users := newStubUserRepo()
	resolver := NewIdentityResolver(users, discardLogger)

	id, err := resolver.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created := users.byID[id]
	if created == nil {
		t.Fatal("placeholder row was not created")
	}
	if !created.Anonymous() {
		t.Error("placeholder must carry no password hash")
	}
	if created.Name != domain.AnonymousName {
		t.Errorf("name = %q, want %q", created.Name, domain.AnonymousName)
	}
	if !strings.HasPrefix(created.Email, "anonymous-") {
		t.Errorf("unexpected placeholder email %q", created.Email)
	}
}

func TestIdentityResolver_PlaceholderEmailsAreUnique(t *testing.T) {
	users := newStubUserRepo()
	resolver := NewIdentityResolver(users, discardLogger)

	a, err := resolver.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	b, err := resolver.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if a == b {
		t.Error("concurrent anonymous submissions must not share an id by default")
	}
	if users.byID[a].Email == users.byID[b].Email {
		t.Error("placeholder emails must be unique")
	}
}

func TestIdentityResolver_ConflictFallsBackToWinner(t *testing.T) {
	users := newStubUserRepo()
	users.conflictOnce = true
	resolver := NewIdentityResolver(users, discardLogger)

	id, err := resolver.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("conflict must be recovered, got %v", err)
	}
	if users.byID[id] == nil {
		t.Error("resolver must reuse the row the winning request created")
	}
	if len(users.byID) != 1 {
		t.Errorf("expected a single user row, got %d", len(users.byID))
	}
}

func TestIdentityResolver_ExhaustedConflictsBecomeInfrastructureError(t *testing.T) {
	users := newStubUserRepo()
	users.alwaysConflict = true
	resolver := NewIdentityResolver(users, discardLogger)

	_, err := resolver.Resolve(context.Background(), "")
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable after exhausted retries, got %v", err)
	}
}
