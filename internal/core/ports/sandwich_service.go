package ports

import (
	"context"
	"time"
)

// Sort orders supported by the discovery engine.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortRating = "rating" // descending average overall, newest first on ties
)

// SubmitSandwichInput carries a validated-at-the-edge submission payload.
// The service re-validates independently of any client-side gating.
type SubmitSandwichInput struct {
	Title          string
	Description    string
	Type           string
	RestaurantName string // required when Type is RESTAURANT
	Ingredients    string // comma-delimited, required when Type is HOMEMADE
	Overall        float64
	Taste          float64
	Texture        float64
	Presentation   float64
	Images         []string
	// CallerID is the verified user id from the session, empty for anonymous
	// submissions.
	CallerID string
}

// SubmitSandwichResult echoes the created sandwich.
type SubmitSandwichResult struct {
	ID          string
	Title       string
	Description string
	Type        string
	Images      []string
	Ingredients []string
	Restaurant  string // resolved restaurant name, empty for homemade
	UserID      string
	Overall     float64
	CreatedAt   time.Time
}

// DiscoverInput carries the discovery query parameters.
type DiscoverInput struct {
	Query  string
	Type   string // RESTAURANT, HOMEMADE, or empty for both
	Sort   string // SortNewest, SortOldest, or SortRating; empty means newest
	UserID string // non-empty = only this user's submissions
	Limit  int    // 0 = unbounded (the full discover view)
}

// SandwichSummary is the list-view projection of a sandwich.
type SandwichSummary struct {
	ID             string
	Title          string
	Description    string
	Type           string
	Images         []string
	RestaurantName string
	AuthorName     string
	AverageOverall float64 // unrounded; round at the presentation boundary
	HasRatings     bool
	RatingsCount   int
	CreatedAt      time.Time
}

// DiscoverResult is the ordered result set for a discovery query.
type DiscoverResult struct {
	Items []SandwichSummary
	Total int
}

// RatingView is a single rating in a detail view.
type RatingView struct {
	Overall      float64
	Taste        float64
	Texture      float64
	Presentation float64
	Composite    float64 // unrounded mean of the four dimensions
	Review       string
	CreatedAt    time.Time
}

// SandwichDetail is the full view returned for a single sandwich.
type SandwichDetail struct {
	ID             string
	Title          string
	Description    string
	Type           string
	Images         []string
	Ingredients    []string
	Price          *float64
	RestaurantName string
	AuthorName     string
	AverageOverall float64
	HasRatings     bool
	Ratings        []RatingView
	CreatedAt      time.Time
}

// SandwichService covers the submission transaction and the discovery read
// paths.
type SandwichService interface {
	Submit(ctx context.Context, input SubmitSandwichInput) (*SubmitSandwichResult, error)
	Get(ctx context.Context, id string) (*SandwichDetail, error)
	Discover(ctx context.Context, input DiscoverInput) (*DiscoverResult, error)
}
