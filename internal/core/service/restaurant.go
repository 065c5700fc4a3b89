package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandwichlab/sandwich-api/internal/api/metrics"
	"github.com/sandwichlab/sandwich-api/internal/core/domain"
	"github.com/sandwichlab/sandwich-api/internal/core/ports"
)

// dedupAttempts bounds the read/create/re-read loop. Each pass can only fail
// on a concurrent identical create, so two passes already cover the realistic
// race; the third is slack before promotion to an infrastructure error.
const dedupAttempts = 3

// RestaurantDeduplicator resolves a free-text restaurant name to a single
// restaurant row, creating it on first reference. Exact name is the dedup
// key; a concurrent identical create is recovered by re-reading, never
// surfaced to the caller.
type RestaurantDeduplicator struct {
	restaurants ports.RestaurantRepository
	logger      zerolog.Logger
}

func NewRestaurantDeduplicator(restaurants ports.RestaurantRepository, logger zerolog.Logger) *RestaurantDeduplicator {
	return &RestaurantDeduplicator{restaurants: restaurants, logger: logger}
}

// Resolve returns the id of the restaurant with the given name. Existing rows
// are reused as-is; their fields are never updated through this path.
func (d *RestaurantDeduplicator) Resolve(ctx context.Context, name string) (string, error) {
	for attempt := 0; attempt < dedupAttempts; attempt++ {
		existing, err := d.restaurants.FindByName(ctx, name)
		if err == nil {
			metrics.RestaurantDedupTotal.WithLabelValues("hit").Inc()
			return existing.ID, nil
		}
		if !errors.Is(err, domain.ErrRestaurantNotFound) {
			return "", fmt.Errorf("resolve restaurant: %w", err)
		}

		created, err := d.restaurants.Create(ctx, &domain.Restaurant{
			Name:      name,
			CreatedAt: time.Now().UTC(),
		})
		if err == nil {
			d.logger.Info().Str("restaurant_id", created.ID).Str("restaurant", name).Msg("restaurant created")
			metrics.RestaurantDedupTotal.WithLabelValues("miss").Inc()
			return created.ID, nil
		}
		if !errors.Is(err, domain.ErrRestaurantExists) {
			return "", fmt.Errorf("create restaurant: %w", err)
		}

		// A concurrent submission created the same name first; re-read it.
		d.logger.Debug().Str("restaurant", name).Int("attempt", attempt+1).Msg("restaurant create conflict, re-reading")
	}

	return "", fmt.Errorf("resolve restaurant %q: %w", name, domain.ErrStorageUnavailable)
}
