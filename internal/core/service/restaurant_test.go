package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sandwichlab/sandwich-api/internal/core/domain"
)

func TestRestaurantDeduplicator_CreatesOnFirstReference(t *testing.T) {
	restaurants := newStubRestaurantRepo()
	dedup := NewRestaurantDeduplicator(restaurants, discardLogger)

	id, err := dedup.Resolve(context.Background(), "Subway")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a restaurant id")
	}
	if len(restaurants.byName) != 1 {
		t.Errorf("expected 1 row, got %d", len(restaurants.byName))
	}
}

func TestRestaurantDeduplicator_ReusesExistingRow(t *testing.T) {
	restaurants := newStubRestaurantRepo()
	dedup := NewRestaurantDeduplicator(restaurants, discardLogger)

	first, err := dedup.Resolve(context.Background(), "Subway")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := dedup.Resolve(context.Background(), "Subway")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Errorf("expected the same id, got %q and %q", first, second)
	}
	if len(restaurants.byName) != 1 {
		t.Errorf("expected 1 row, got %d", len(restaurants.byName))
	}
}

func TestRestaurantDeduplicator_CreateConflictRereads(t *testing.T) {
	restaurants := newStubRestaurantRepo()
	restaurants.conflictOnce = true
	dedup := NewRestaurantDeduplicator(restaurants, discardLogger)

	id, err := dedup.Resolve(context.Background(), "Subway")
	if err != nil {
		t.Fatalf("race must be recovered internally, got %v", err)
	}
	if restaurants.byName["Subway"] == nil || restaurants.byName["Subway"].ID != id {
		t.Error("resolver must return the surviving row's id")
	}
}

func TestRestaurantDeduplicator_ExhaustedRetriesPromoted(t *testing.T) {
	restaurants := newStubRestaurantRepo()
	restaurants.alwaysConflict = true
	dedup := NewRestaurantDeduplicator(restaurants, discardLogger)

	_, err := dedup.Resolve(context.Background(), "Subway")
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
