package domain

import (
	"math"
	"time"
)

// Rating scale bounds. Every dimension of a stored rating lies within these.
const (
	RatingMin = 1.0
	RatingMax = 10.0
)

// Rating is a four-dimension review attached to exactly one sandwich. The
// overall dimension is supplied independently by the reviewer; it is not
// derived from the other three.
type Rating struct {
	ID           string
	Overall      float64
	Taste        float64
	Texture      float64
	Presentation float64
	Review       string
	SandwichID   string
	UserID       string // empty when the author was anonymous
	CreatedAt    time.Time
}

// InScale reports whether v is a valid rating dimension value.
func InScale(v float64) bool {
	return v >= RatingMin && v <= RatingMax
}

// Composite is the mean of the four dimensions of a single rating, used in
// detail views. The result is unrounded; round only at the presentation
// boundary.
func (r Rating) Composite() float64 {
	return (r.Overall + r.Taste + r.Texture + r.Presentation) / 4
}

// AverageOverall computes the mean of the overall dimension across ratings.
// The boolean distinguishes "no ratings" from a genuine zero; ranking must
// use the unrounded mean so that ties are not manufactured by rounding.
func AverageOverall(ratings []Rating) (float64, bool) {
	if len(ratings) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range ratings {
		sum += r.Overall
	}
	return sum / float64(len(ratings)), true
}

// Round1 rounds to one decimal place. Stored rating dimensions and every
// number leaving the API go through this; intermediate aggregates do not.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
