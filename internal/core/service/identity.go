package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sandwichlab/sandwich-api/internal/api/metrics"
	"github.com/sandwichlab/sandwich-api/internal/core/domain"
	"github.com/sandwichlab/sandwich-api/internal/core/ports"
)

// anonymousAttempts bounds the create/fallback loop for placeholder accounts.
const anonymousAttempts = 3

// anonymousDomain is the host part of generated placeholder emails. The local
// part embeds a UUID, so the address is globally unique and never routable.
const anonymousDomain = "sandwich.local"

// IdentityResolver turns an optional verified user id into a definite user id
// to attribute a write to, minting an anonymous placeholder account when the
// caller has no session.
type IdentityResolver struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewIdentityResolver(users ports.UserRepository, logger zerolog.Logger) *IdentityResolver {
	return &IdentityResolver{users: users, logger: logger}
}

// Resolve returns the owning user id for a new submission.
//
// A supplied verified id must exist; a missing row is a data-integrity
// failure (domain.ErrIdentityNotFound), never a silent downgrade to
// anonymous. Without a verified id a placeholder account is created; losing
// the email uniqueness race degrades to reusing the row the winner created.
func (r *IdentityResolver) Resolve(ctx context.Context, verifiedID string) (string, error) {
	if verifiedID != "" {
		user, err := r.users.FindByID(ctx, verifiedID)
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", fmt.Errorf("resolve identity %s: %w", verifiedID, domain.ErrIdentityNotFound)
		}
		if err != nil {
			return "", fmt.Errorf("resolve identity: %w", err)
		}
		metrics.IdentityResolvedTotal.WithLabelValues("authenticated").Inc()
		return user.ID, nil
	}

	var lastErr error
	for attempt := 0; attempt < anonymousAttempts; attempt++ {
		email := anonymousEmail()
		created, err := r.users.Create(ctx, &domain.User{
			Name:      domain.AnonymousName,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		})
		if err == nil {
			r.logger.Info().Str("user_id", created.ID).Msg("anonymous identity created")
			metrics.IdentityResolvedTotal.WithLabelValues("anonymous").Inc()
			return created.ID, nil
		}
		if !errors.Is(err, domain.ErrUserExists) {
			return "", fmt.Errorf("create anonymous identity: %w", err)
		}

		// Lost the uniqueness race: reuse whatever row the winner committed.
		existing, findErr := r.users.FindByEmail(ctx, email)
		if findErr == nil {
			r.logger.Debug().Str("user_id", existing.ID).Msg("anonymous identity reused after conflict")
			metrics.IdentityResolvedTotal.WithLabelValues("anonymous_reused").Inc()
			return existing.ID, nil
		}
		lastErr = findErr
		r.logger.Warn().Err(findErr).Int("attempt", attempt+1).Msg("anonymous identity conflict fallback found nothing, retrying")
	}

	return "", fmt.Errorf("resolve anonymous identity: %w: %v", domain.ErrStorageUnavailable, lastErr)
}

func anonymousEmail() string {
	return fmt.Sprintf("anonymous-%s@%s", uuid.NewString(), anonymousDomain)
}
