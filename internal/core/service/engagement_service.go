package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandwichlab/sandwich-api/internal/core/domain"
	"github.com/sandwichlab/sandwich-api/internal/core/ports"
)

const commentMaxLen = 500

// LikeCountCache abstracts the like-count cache (Redis). Cache failures are
// never fatal; the service falls back to counting in storage.
type LikeCountCache interface {
	Get(ctx context.Context, sandwichID string) (int64, bool, error)
	Set(ctx context.Context, sandwichID string, count int64) error
	Invalidate(ctx context.Context, sandwichID string) error
}

// EngagementService handles likes and comment threads.
type EngagementService struct {
	sandwiches ports.SandwichRepository
	likes      ports.LikeRepository
	comments   ports.CommentRepository
	users      ports.UserRepository
	cache      LikeCountCache
	logger     zerolog.Logger
}

func NewEngagementService(
	sandwiches ports.SandwichRepository,
	likes ports.LikeRepository,
	comments ports.CommentRepository,
	users ports.UserRepository,
	cache LikeCountCache,
	logger zerolog.Logger,
) *EngagementService {
	return &EngagementService{
		sandwiches: sandwiches,
		likes:      likes,
		comments:   comments,
		users:      users,
		cache:      cache,
		logger:     logger,
	}
}

// ToggleLike flips the caller's like on the sandwich.
func (s *EngagementService) ToggleLike(ctx context.Context, sandwichID, userID string) (*ports.LikeState, error) {
	if _, err := s.sandwiches.FindByID(ctx, sandwichID); err != nil {
		return nil, err
	}

	liked := false
	existing, err := s.likes.FindLike(ctx, userID, sandwichID)
	switch {
	case err == nil:
		if err := s.likes.DeleteLike(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("remove like: %w", err)
		}
	case errors.Is(err, domain.ErrLikeNotFound):
		_, err := s.likes.CreateLike(ctx, &domain.Like{
			UserID:     userID,
			SandwichID: sandwichID,
			CreatedAt:  time.Now().UTC(),
		})
		if err != nil {
			return nil, fmt.Errorf("add like: %w", err)
		}
		liked = true
	default:
		return nil, fmt.Errorf("toggle like: %w", err)
	}

	count, err := s.likes.CountLikes(ctx, sandwichID)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	if err := s.cache.Set(ctx, sandwichID, count); err != nil {
		s.logger.Warn().Err(err).Str("sandwich_id", sandwichID).Msg("like cache update failed")
	}

	s.logger.Info().
		Str("sandwich_id", sandwichID).
		Str("user_id", userID).
		Bool("liked", liked).
		Msg("like toggled")

	return &ports.LikeState{Liked: liked, Count: count}, nil
}

// LikeStatus returns the like count (cache-aside) plus the caller's state.
func (s *EngagementService) LikeStatus(ctx context.Context, sandwichID, userID string) (*ports.LikeState, error) {
	count, ok, err := s.cache.Get(ctx, sandwichID)
	if err != nil {
		s.logger.Warn().Err(err).Str("sandwich_id", sandwichID).Msg("like cache read failed, counting from storage")
		ok = false
	}
	if !ok {
		count, err = s.likes.CountLikes(ctx, sandwichID)
		if err != nil {
			return nil, fmt.Errorf("count likes: %w", err)
		}
		if err := s.cache.Set(ctx, sandwichID, count); err != nil {
			s.logger.Warn().Err(err).Str("sandwich_id", sandwichID).Msg("like cache fill failed")
		}
	}

	liked := false
	if userID != "" {
		if _, err := s.likes.FindLike(ctx, userID, sandwichID); err == nil {
			liked = true
		}
	}

	return &ports.LikeState{Liked: liked, Count: count}, nil
}

// AddComment creates a comment or a reply to a top-level comment.
func (s *EngagementService) AddComment(ctx context.Context, input ports.AddCommentInput) (*ports.CommentView, error) {
	content := strings.TrimSpace(input.Content)
	verr := &domain.ValidationError{}
	if content == "" {
		verr.Add("content", "comment cannot be empty")
	} else if len(content) > commentMaxLen {
		verr.Add("content", fmt.Sprintf("comment must be less than %d characters", commentMaxLen))
	}
	if !verr.Empty() {
		return nil, verr
	}

	if _, err := s.sandwiches.FindByID(ctx, input.SandwichID); err != nil {
		return nil, err
	}

	if input.ParentID != "" {
		parent, err := s.comments.FindCommentByID(ctx, input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.SandwichID != input.SandwichID {
			return nil, verr.Add("parent_id", "parent comment belongs to a different sandwich")
		}
		if parent.ParentID != "" {
			return nil, verr.Add("parent_id", "replies cannot be nested further")
		}
	}

	created, err := s.comments.CreateComment(ctx, &domain.Comment{
		Content:    content,
		SandwichID: input.SandwichID,
		UserID:     input.UserID,
		ParentID:   input.ParentID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	authorName := domain.AnonymousName
	if author, err := s.users.FindByID(ctx, input.UserID); err == nil {
		authorName = author.DisplayName()
	}

	return &ports.CommentView{
		ID:         created.ID,
		Content:    created.Content,
		AuthorName: authorName,
		CreatedAt:  created.CreatedAt,
		Replies:    []ports.CommentView{},
	}, nil
}

// Comments returns the sandwich's comment threads: top-level newest-first,
// replies oldest-first.
func (s *EngagementService) Comments(ctx context.Context, sandwichID string) ([]ports.CommentView, error) {
	rows, err := s.comments.CommentsBySandwich(ctx, sandwichID)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	if len(rows) == 0 {
		return []ports.CommentView{}, nil
	}

	userIDs := make([]string, 0, len(rows))
	seen := make(map[string]struct{})
	for _, c := range rows {
		if _, ok := seen[c.UserID]; !ok {
			seen[c.UserID] = struct{}{}
			userIDs = append(userIDs, c.UserID)
		}
	}
	names, err := s.users.DisplayNames(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}

	view := func(c domain.Comment) ports.CommentView {
		name := names[c.UserID]
		if name == "" {
			name = domain.AnonymousName
		}
		return ports.CommentView{
			ID:         c.ID,
			Content:    c.Content,
			AuthorName: name,
			CreatedAt:  c.CreatedAt,
			Replies:    []ports.CommentView{},
		}
	}

	replies := make(map[string][]domain.Comment)
	var topLevel []domain.Comment
	for _, c := range rows {
		if c.ParentID == "" {
			topLevel = append(topLevel, c)
			continue
		}
		replies[c.ParentID] = append(replies[c.ParentID], c)
	}

	sort.Slice(topLevel, func(i, j int) bool {
		return topLevel[i].CreatedAt.After(topLevel[j].CreatedAt)
	})

	threads := make([]ports.CommentView, 0, len(topLevel))
	for _, c := range topLevel {
		thread := view(c)
		children := replies[c.ID]
		sort.Slice(children, func(i, j int) bool {
			return children[i].CreatedAt.Before(children[j].CreatedAt)
		})
		for _, reply := range children {
			thread.Replies = append(thread.Replies, view(reply))
		}
		threads = append(threads, thread)
	}
	return threads, nil
}
