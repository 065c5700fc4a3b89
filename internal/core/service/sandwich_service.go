package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandwichlab/sandwich-api/internal/api/metrics"
	"github.com/sandwichlab/sandwich-api/internal/core/domain"
	"github.com/sandwichlab/sandwich-api/internal/core/ports"
)

const (
	titleMaxLen       = 100
	descriptionMinLen = 10
	descriptionMaxLen = 1000
	imagesMin         = 1
	imagesMax         = 5
)

// SandwichService implements the submission transaction and the discovery
// read paths.
type SandwichService struct {
	sandwiches  ports.SandwichRepository
	restaurants ports.RestaurantRepository
	users       ports.UserRepository
	identity    *IdentityResolver
	dedup       *RestaurantDeduplicator
	logger      zerolog.Logger
}

func NewSandwichService(
	sandwiches ports.SandwichRepository,
	restaurants ports.RestaurantRepository,
	users ports.UserRepository,
	logger zerolog.Logger,
) *SandwichService {
	return &SandwichService{
		sandwiches:  sandwiches,
		restaurants: restaurants,
		users:       users,
		identity:    NewIdentityResolver(users, logger),
		dedup:       NewRestaurantDeduplicator(restaurants, logger),
		logger:      logger,
	}
}

// Submit validates the payload, resolves the restaurant and the owning
// identity, and writes the sandwich together with its rating.
//
// Restaurant and anonymous-user rows are created ahead of the sandwich+rating
// transaction and may persist if a later step fails: both are idempotent
// upserts guarded by unique indexes, so a retry reuses them. The
// sandwich+rating pair itself is atomic; readers never observe one without
// the other.
func (s *SandwichService) Submit(ctx context.Context, input ports.SubmitSandwichInput) (*ports.SubmitSandwichResult, error) {
	if verr := validateSubmission(input); !verr.Empty() {
		metrics.SubmissionErrorsTotal.WithLabelValues("validation").Inc()
		return nil, verr
	}

	start := time.Now()
	defer func() {
		metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
	}()

	sandwichType := domain.SandwichType(input.Type)

	var restaurantID, restaurantName string
	if sandwichType == domain.TypeRestaurant {
		restaurantName = strings.TrimSpace(input.RestaurantName)
		id, err := s.dedup.Resolve(ctx, restaurantName)
		if err != nil {
			metrics.SubmissionErrorsTotal.WithLabelValues("storage").Inc()
			return nil, err
		}
		restaurantID = id
	}

	userID, err := s.identity.Resolve(ctx, input.CallerID)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			metrics.SubmissionErrorsTotal.WithLabelValues("identity").Inc()
		} else {
			metrics.SubmissionErrorsTotal.WithLabelValues("storage").Inc()
		}
		return nil, err
	}

	var ingredients []string
	if sandwichType == domain.TypeHomemade {
		ingredients = normalizeIngredients(input.Ingredients)
	}

	now := time.Now().UTC()
	sandwich := &domain.Sandwich{
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Type:         sandwichType,
		Images:       input.Images,
		Ingredients:  ingredients,
		CreatedAt:    now,
		UserID:       userID,
		RestaurantID: restaurantID,
	}
	rating := &domain.Rating{
		Overall:      domain.Round1(input.Overall),
		Taste:        domain.Round1(input.Taste),
		Texture:      domain.Round1(input.Texture),
		Presentation: domain.Round1(input.Presentation),
		UserID:       userID,
		CreatedAt:    now,
	}

	if err := s.sandwiches.CreateWithRating(ctx, sandwich, rating); err != nil {
		s.logger.Error().Err(err).Msg("failed to write submission")
		metrics.SubmissionErrorsTotal.WithLabelValues("storage").Inc()
		return nil, fmt.Errorf("submit sandwich: %w", err)
	}

	s.logger.Info().
		Str("sandwich_id", sandwich.ID).
		Str("user_id", userID).
		Str("type", string(sandwichType)).
		Msg("sandwich submitted")
	metrics.SubmissionsCreatedTotal.WithLabelValues(string(sandwichType)).Inc()

	return &ports.SubmitSandwichResult{
		ID:          sandwich.ID,
		Title:       sandwich.Title,
		Description: sandwich.Description,
		Type:        string(sandwich.Type),
		Images:      sandwich.Images,
		Ingredients: sandwich.Ingredients,
		Restaurant:  restaurantName,
		UserID:      userID,
		Overall:     rating.Overall,
		CreatedAt:   sandwich.CreatedAt,
	}, nil
}

// Get returns the full detail view for one sandwich.
func (s *SandwichService) Get(ctx context.Context, id string) (*ports.SandwichDetail, error) {
	sandwich, err := s.sandwiches.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ratingsByID, err := s.sandwiches.RatingsBySandwichIDs(ctx, []string{sandwich.ID})
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	ratings := ratingsByID[sandwich.ID]

	authorName := domain.AnonymousName
	if author, err := s.users.FindByID(ctx, sandwich.UserID); err == nil {
		authorName = author.DisplayName()
	}

	var restaurantName string
	if sandwich.RestaurantID != "" {
		names, err := s.restaurants.NamesByIDs(ctx, []string{sandwich.RestaurantID})
		if err != nil {
			return nil, fmt.Errorf("load restaurant: %w", err)
		}
		restaurantName = names[sandwich.RestaurantID]
	}

	avg, hasRatings := domain.AverageOverall(ratings)
	views := make([]ports.RatingView, len(ratings))
	for i, r := range ratings {
		views[i] = ports.RatingView{
			Overall:      r.Overall,
			Taste:        r.Taste,
			Texture:      r.Texture,
			Presentation: r.Presentation,
			Composite:    r.Composite(),
			Review:       r.Review,
			CreatedAt:    r.CreatedAt,
		}
	}

	return &ports.SandwichDetail{
		ID:             sandwich.ID,
		Title:          sandwich.Title,
		Description:    sandwich.Description,
		Type:           string(sandwich.Type),
		Images:         sandwich.Images,
		Ingredients:    sandwich.Ingredients,
		Price:          sandwich.Price,
		RestaurantName: restaurantName,
		AuthorName:     authorName,
		AverageOverall: avg,
		HasRatings:     hasRatings,
		Ratings:        views,
		CreatedAt:      sandwich.CreatedAt,
	}, nil
}

// Discover returns the filtered, ordered sandwich collection. Creation-time
// orderings are pushed to storage; rating order is materialized here because
// average rating is not stored.
func (s *SandwichService) Discover(ctx context.Context, input ports.DiscoverInput) (*ports.DiscoverResult, error) {
	sortOrder := input.Sort
	if sortOrder == "" {
		sortOrder = ports.SortNewest
	}
	if verr := validateDiscover(input.Type, sortOrder); !verr.Empty() {
		return nil, verr
	}

	rows, err := s.sandwiches.List(ctx, ports.SandwichFilter{
		Query:  strings.TrimSpace(input.Query),
		Type:   domain.SandwichType(input.Type),
		UserID: input.UserID,
		Oldest: sortOrder == ports.SortOldest,
	})
	if err != nil {
		return nil, fmt.Errorf("list sandwiches: %w", err)
	}

	summaries, err := s.summarize(ctx, rows)
	if err != nil {
		return nil, err
	}

	if sortOrder == ports.SortRating {
		// Unrounded means keep ties honest; equal averages fall back to
		// newest first.
		sort.SliceStable(summaries, func(i, j int) bool {
			if summaries[i].AverageOverall != summaries[j].AverageOverall {
				return summaries[i].AverageOverall > summaries[j].AverageOverall
			}
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		})
	}

	total := len(summaries)
	if input.Limit > 0 && len(summaries) > input.Limit {
		summaries = summaries[:input.Limit]
	}

	metrics.DiscoveryQueriesTotal.WithLabelValues(sortOrder).Inc()
	return &ports.DiscoverResult{Items: summaries, Total: total}, nil
}

// summarize materializes the per-sandwich aggregate rating and resolves the
// referenced restaurant and author names in batched lookups.
func (s *SandwichService) summarize(ctx context.Context, rows []*domain.Sandwich) ([]ports.SandwichSummary, error) {
	if len(rows) == 0 {
		return []ports.SandwichSummary{}, nil
	}

	ids := make([]string, len(rows))
	userIDs := make([]string, 0, len(rows))
	restaurantIDs := make([]string, 0, len(rows))
	seenUsers := make(map[string]struct{})
	seenRestaurants := make(map[string]struct{})
	for i, row := range rows {
		ids[i] = row.ID
		if _, ok := seenUsers[row.UserID]; !ok {
			seenUsers[row.UserID] = struct{}{}
			userIDs = append(userIDs, row.UserID)
		}
		if row.RestaurantID != "" {
			if _, ok := seenRestaurants[row.RestaurantID]; !ok {
				seenRestaurants[row.RestaurantID] = struct{}{}
				restaurantIDs = append(restaurantIDs, row.RestaurantID)
			}
		}
	}

	ratings, err := s.sandwiches.RatingsBySandwichIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	authorNames, err := s.users.DisplayNames(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	restaurantNames := map[string]string{}
	if len(restaurantIDs) > 0 {
		restaurantNames, err = s.restaurants.NamesByIDs(ctx, restaurantIDs)
		if err != nil {
			return nil, fmt.Errorf("load restaurants: %w", err)
		}
	}

	summaries := make([]ports.SandwichSummary, len(rows))
	for i, row := range rows {
		avg, hasRatings := domain.AverageOverall(ratings[row.ID])
		authorName := authorNames[row.UserID]
		if authorName == "" {
			authorName = domain.AnonymousName
		}
		summaries[i] = ports.SandwichSummary{
			ID:             row.ID,
			Title:          row.Title,
			Description:    row.Description,
			Type:           string(row.Type),
			Images:         row.Images,
			RestaurantName: restaurantNames[row.RestaurantID],
			AuthorName:     authorName,
			AverageOverall: avg,
			HasRatings:     hasRatings,
			RatingsCount:   len(ratings[row.ID]),
			CreatedAt:      row.CreatedAt,
		}
	}
	return summaries, nil
}

// validateSubmission enforces every pre-transaction rule. No write is
// attempted while any issue exists.
func validateSubmission(input ports.SubmitSandwichInput) *domain.ValidationError {
	verr := &domain.ValidationError{}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		verr.Add("title", "sandwich name is required")
	} else if len(title) > titleMaxLen {
		verr.Add("title", fmt.Sprintf("name must be less than %d characters", titleMaxLen))
	}

	description := strings.TrimSpace(input.Description)
	if len(description) < descriptionMinLen {
		verr.Add("description", fmt.Sprintf("description must be at least %d characters", descriptionMinLen))
	} else if len(description) > descriptionMaxLen {
		verr.Add("description", fmt.Sprintf("description must be less than %d characters", descriptionMaxLen))
	}

	sandwichType := domain.SandwichType(input.Type)
	switch {
	case !sandwichType.Valid():
		verr.Add("type", "type must be RESTAURANT or HOMEMADE")
	case sandwichType == domain.TypeRestaurant:
		if strings.TrimSpace(input.RestaurantName) == "" {
			verr.Add("restaurant_name", "restaurant name is required for restaurant sandwiches")
		}
	case sandwichType == domain.TypeHomemade:
		if len(normalizeIngredients(input.Ingredients)) == 0 {
			verr.Add("ingredients", "at least one ingredient is required for homemade sandwiches")
		}
	}

	checkScale(verr, "overall_rating", input.Overall)
	checkScale(verr, "taste_rating", input.Taste)
	checkScale(verr, "texture_rating", input.Texture)
	checkScale(verr, "presentation_rating", input.Presentation)

	if len(input.Images) < imagesMin {
		verr.Add("images", "at least one image is required")
	} else if len(input.Images) > imagesMax {
		verr.Add("images", fmt.Sprintf("maximum %d images allowed", imagesMax))
	}
	for _, url := range input.Images {
		if strings.TrimSpace(url) == "" {
			verr.Add("images", "image URLs must not be empty")
			break
		}
	}

	return verr
}

func checkScale(verr *domain.ValidationError, field string, v float64) {
	if !domain.InScale(v) {
		verr.Add(field, fmt.Sprintf("rating must be between %g and %g", domain.RatingMin, domain.RatingMax))
	}
}

func validateDiscover(sandwichType, sortOrder string) *domain.ValidationError {
	verr := &domain.ValidationError{}
	if sandwichType != "" && !domain.SandwichType(sandwichType).Valid() {
		verr.Add("type", "type must be RESTAURANT or HOMEMADE")
	}
	switch sortOrder {
	case ports.SortNewest, ports.SortOldest, ports.SortRating:
	default:
		verr.Add("sort", "sort must be newest, oldest, or rating")
	}
	return verr
}

// normalizeIngredients splits a comma-delimited ingredient string into
// trimmed, non-empty tokens.
func normalizeIngredients(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
