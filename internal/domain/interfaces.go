package domain

import (
	"context"
	"time"

	"spotbook/internal/models"
)

// Repository is the entity store consumed by the engines. The sqlite
// implementation lives in internal/database.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	CreateSpot(ctx context.Context, spot *models.Spot) error
	GetSpot(ctx context.Context, id int64) (*models.Spot, error)
	UpdateSpot(ctx context.Context, spot *models.Spot) error
	DeleteSpotCascade(ctx context.Context, id int64) error
	SearchSpots(ctx context.Context, filter models.SearchFilter) ([]*models.SpotWithRating, error)
	GetOwnerSpots(ctx context.Context, ownerID int64) ([]*models.SpotWithRating, error)

	AddSpotImage(ctx context.Context, image *models.SpotImage) error
	DeleteSpotImage(ctx context.Context, id, spotID int64) error
	GetSpotImages(ctx context.Context, spotID int64) ([]models.SpotImage, error)

	CreateBookingTx(ctx context.Context, booking *models.Booking) error
	UpdateBookingTx(ctx context.Context, id int64, newStart, newEnd time.Time) (*models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	GetSpotBookings(ctx context.Context, spotID int64) ([]*models.BookingWithRenter, error)
	GetSpotBookingWindows(ctx context.Context, spotID int64) ([]*models.BookingWindow, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*models.BookingWithSpot, error)

	CreateReview(ctx context.Context, review *models.Review) error
	GetReview(ctx context.Context, id int64) (*models.Review, error)
	UpdateReview(ctx context.Context, id int64, body string, stars int64) error
	DeleteReview(ctx context.Context, id int64) error
	GetSpotReviews(ctx context.Context, spotID int64) ([]*models.ReviewWithAuthor, error)
	GetRating(ctx context.Context, spotID int64) (*models.RatingAggregate, error)
}

// SessionStore resolves opaque session tokens into user ids. The core trusts
// the resolved id; issuing credentials is an external concern.
type SessionStore interface {
	Resolve(ctx context.Context, token string) (int64, error)
	Put(ctx context.Context, token string, userID int64) error
	Delete(ctx context.Context, token string) error
}

// EventPublisher pushes domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Clock supplies the current time so past/future checks are testable with a
// fixed "now".
type Clock interface {
	Now() time.Time
}
