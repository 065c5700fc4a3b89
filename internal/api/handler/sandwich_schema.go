package handler

import "time"

type createSandwichRequest struct {
	Title              string   `json:"title" validate:"required,max=100"`
	Description        string   `json:"description" validate:"required,min=10,max=1000"`
	Type               string   `json:"type" validate:"required,oneof=RESTAURANT HOMEMADE"`
	RestaurantName     string   `json:"restaurant_name" validate:"required_if=Type RESTAURANT"`
	Ingredients        string   `json:"ingredients" validate:"required_if=Type HOMEMADE"`
	OverallRating      string   `json:"overall_rating" validate:"required,numeric"`
	TasteRating        string   `json:"taste_rating" validate:"required,numeric"`
	TextureRating      string   `json:"texture_rating" validate:"required,numeric"`
	PresentationRating string   `json:"presentation_rating" validate:"required,numeric"`
	Images             []string `json:"images" validate:"required,min=1,max=5,dive,required"`
}

type createSandwichResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Type           string    `json:"type"`
	Images         []string  `json:"images"`
	Ingredients    []string  `json:"ingredients,omitempty"`
	RestaurantName string    `json:"restaurant_name,omitempty"`
	UserID         string    `json:"user_id"`
	OverallRating  float64   `json:"overall_rating"`
	CreatedAt      time.Time `json:"created_at"`
}

type sandwichSummaryResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Type           string    `json:"type"`
	Images         []string  `json:"images"`
	RestaurantName string    `json:"restaurant_name,omitempty"`
	AuthorName     string    `json:"author_name"`
	AverageRating  *float64  `json:"average_rating"`
	RatingsCount   int       `json:"ratings_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type discoverSandwichesResponse struct {
	Data  []sandwichSummaryResponse `json:"data"`
	Total int                       `json:"total"`
}

type ratingResponse struct {
	Overall      float64   `json:"overall"`
	Taste        float64   `json:"taste"`
	Texture      float64   `json:"texture"`
	Presentation float64   `json:"presentation"`
	Composite    float64   `json:"composite"`
	Review       string    `json:"review,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type sandwichDetailResponse struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Type           string           `json:"type"`
	Images         []string         `json:"images"`
	Ingredients    []string         `json:"ingredients,omitempty"`
	Price          *float64         `json:"price,omitempty"`
	RestaurantName string           `json:"restaurant_name,omitempty"`
	AuthorName     string           `json:"author_name"`
	AverageRating  *float64         `json:"average_rating"`
	RatingsCount   int              `json:"ratings_count"`
	Ratings        []ratingResponse `json:"ratings"`
	CreatedAt      time.Time        `json:"created_at"`
}
