package ports

import (
	"context"

	"github.com/sandwichlab/sandwich-api/internal/core/domain"
)

// UserRepository persists user accounts, both registered and anonymous
// placeholders. Create must surface domain.ErrUserExists on an email
// uniqueness violation so callers can recover from concurrent creations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// DisplayNames resolves user ids to display names in one round trip.
	// Unknown ids are simply absent from the result.
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}
