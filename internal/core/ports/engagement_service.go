package ports

import (
	"context"
	"time"
)

// LikeState is the caller-visible like state of a sandwich.
type LikeState struct {
	Liked bool
	Count int64
}

// AddCommentInput carries a new comment or reply.
type AddCommentInput struct {
	SandwichID string
	ParentID   string // empty for a top-level comment
	Content    string
	UserID     string
}

// CommentView is a comment with resolved author name and nested replies.
type CommentView struct {
	ID         string
	Content    string
	AuthorName string
	CreatedAt  time.Time
	Replies    []CommentView
}

// EngagementService handles likes and comment threads.
type EngagementService interface {
	// ToggleLike flips the caller's like on the sandwich and returns the new
	// state together with the updated count.
	ToggleLike(ctx context.Context, sandwichID, userID string) (*LikeState, error)
	// LikeStatus returns the count and, when userID is non-empty, whether the
	// caller has liked the sandwich.
	LikeStatus(ctx context.Context, sandwichID, userID string) (*LikeState, error)
	AddComment(ctx context.Context, input AddCommentInput) (*CommentView, error)
	// Comments returns top-level comments newest-first with replies
	// oldest-first.
	Comments(ctx context.Context, sandwichID string) ([]CommentView, error)
}
