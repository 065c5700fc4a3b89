package ports

import (
	"context"

	"github.com/sandwichlab/sandwich-api/internal/core/domain"
)

// LikeRepository persists likes. A duplicate (user, sandwich) insert means a
// lost race on the unique index; CreateLike returns the existing like in that
// case rather than an error.
type LikeRepository interface {
	FindLike(ctx context.Context, userID, sandwichID string) (*domain.Like, error)
	CreateLike(ctx context.Context, like *domain.Like) (*domain.Like, error)
	DeleteLike(ctx context.Context, id string) error
	CountLikes(ctx context.Context, sandwichID string) (int64, error)
}

// CommentRepository persists comments.
type CommentRepository interface {
	CreateComment(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	FindCommentByID(ctx context.Context, id string) (*domain.Comment, error)
	// CommentsBySandwich returns every comment on the sandwich, top-level and
	// replies alike; thread assembly is the service's job.
	CommentsBySandwich(ctx context.Context, sandwichID string) ([]domain.Comment, error)
}
