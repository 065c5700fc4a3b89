package domain

import (
	"errors"
	"time"
)

// SandwichType distinguishes restaurant-sourced submissions from homemade ones.
type SandwichType string

const (
	TypeRestaurant SandwichType = "RESTAURANT"
	TypeHomemade   SandwichType = "HOMEMADE"
)

var ErrSandwichNotFound = errors.New("sandwich not found")
var ErrRestaurantNotFound = errors.New("restaurant not found")
var ErrRestaurantExists = errors.New("restaurant already exists")

// ErrStorageUnavailable marks failures the caller may retry later. It is kept
// distinct from validation and not-found errors so the transport layer can
// answer 503 instead of 4xx.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Valid reports whether t is one of the two known sandwich types.
func (t SandwichType) Valid() bool {
	return t == TypeRestaurant || t == TypeHomemade
}

// Sandwich is the primary reviewed entity. Instances are immutable once
// created: there are no update or delete paths.
type Sandwich struct {
	ID           string
	Title        string
	Description  string
	Type         SandwichType
	Images       []string
	Ingredients  []string // populated only for HOMEMADE submissions
	Price        *float64
	CreatedAt    time.Time
	UserID       string
	RestaurantID string // set only for RESTAURANT submissions
}

// Restaurant is referenced by many sandwiches and deduplicated by exact name.
type Restaurant struct {
	ID        string
	Name      string
	Address   string
	City      string
	State     string
	Country   string
	Website   string
	CreatedAt time.Time
}
