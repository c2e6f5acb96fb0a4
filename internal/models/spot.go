package models

import "time"

type Spot struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"ownerId"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Country     string    `json:"country"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SpotWithRating is a spot row joined with its recomputed review aggregate
// and the opaque preview image reference, as returned by search and list
// operations. AvgRating is nil when the spot has no reviews yet.
type SpotWithRating struct {
	Spot
	NumReviews   int64    `json:"numReviews"`
	AvgRating    *float64 `json:"avgRating"`
	PreviewImage string   `json:"previewImage,omitempty"`
}

// SpotDetail is the full detail view: images, owner public profile and
// the review aggregate.
type SpotDetail struct {
	Spot
	NumReviews    int64       `json:"numReviews"`
	AvgStarRating *float64    `json:"avgStarRating"`
	Images        []SpotImage `json:"images"`
	Owner         User        `json:"owner"`
}

// SpotSnapshot is a spot's public fields plus the preview image reference,
// denormalized onto a renter's booking at read time. It carries no rating
// aggregate.
type SpotSnapshot struct {
	Spot
	PreviewImage string `json:"previewImage,omitempty"`
}

type SpotImage struct {
	ID        int64     `json:"id"`
	SpotID    int64     `json:"spotId"`
	URL       string    `json:"url"`
	Preview   bool      `json:"preview"`
	CreatedAt time.Time `json:"createdAt"`
}

// SearchFilter carries the optional paging and bounds of a listing search.
// Nil means the parameter is absent: an absent bound leaves the dimension
// unconstrained, absent paging falls back to the defaults. An explicit zero
// is out of bounds, not a default.
type SearchFilter struct {
	Page     *int
	Size     *int
	MinLat   *float64
	MaxLat   *float64
	MinLng   *float64
	MaxLng   *float64
	MinPrice *float64
	MaxPrice *float64
}

// SpotPage is one page of search results with the applied paging echoed back.
type SpotPage struct {
	Spots []SpotWithRating `json:"spots"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}
