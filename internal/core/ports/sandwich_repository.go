package ports

import (
	"context"

	"github.com/sandwichlab/sandwich-api/internal/core/domain"
)

// SandwichFilter carries the storage-level filters for listing sandwiches.
// Rating-based ordering is not expressed here: average rating is not stored,
// so the service materializes aggregates and sorts in an application pass.
type SandwichFilter struct {
	Query  string // case-insensitive substring match on title OR description
	Type   domain.SandwichType
	UserID string // non-empty = only this user's submissions
	Oldest bool   // ascending by creation time instead of the default descending
}

// SandwichRepository persists sandwiches and their ratings.
type SandwichRepository interface {
	// CreateWithRating inserts the sandwich and its rating as one atomic unit
	// and fills in the generated ids. If either insert fails, neither is
	// visible to readers.
	CreateWithRating(ctx context.Context, s *domain.Sandwich, r *domain.Rating) error

	FindByID(ctx context.Context, id string) (*domain.Sandwich, error)

	// List returns sandwiches matching filter, ordered by creation time.
	List(ctx context.Context, filter SandwichFilter) ([]*domain.Sandwich, error)

	// RatingsBySandwichIDs fetches all ratings for the given sandwiches,
	// keyed by sandwich id.
	RatingsBySandwichIDs(ctx context.Context, ids []string) (map[string][]domain.Rating, error)
}
