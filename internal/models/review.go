package models

import "time"

type Review struct {
	ID        int64     `json:"id"`
	SpotID    int64     `json:"spotId"`
	UserID    int64     `json:"userId"`
	Body      string    `json:"body"`
	Stars     int64     `json:"stars"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReviewWithAuthor joins in the reviewer's public fields for listing.
type ReviewWithAuthor struct {
	Review
	Author User `json:"author"`
}

// RatingAggregate is the derived per-spot rating. It is recomputed from the
// review set on every read, never cached. AvgRating is nil when NumReviews
// is zero so callers can render "New" instead of a numeric rating.
type RatingAggregate struct {
	NumReviews int64    `json:"numReviews"`
	AvgRating  *float64 `json:"avgRating"`
}
