package ports

import (
	"context"

	"github.com/sandwichlab/sandwich-api/internal/core/domain"
)

// RestaurantRepository persists restaurants. Name is the dedup key: Create
// must surface domain.ErrRestaurantExists on a name uniqueness violation so
// the deduplicator can fall back to a re-read.
type RestaurantRepository interface {
	Create(ctx context.Context, r *domain.Restaurant) (*domain.Restaurant, error)
	FindByName(ctx context.Context, name string) (*domain.Restaurant, error)
	// NamesByIDs resolves restaurant ids to names in one round trip.
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}
