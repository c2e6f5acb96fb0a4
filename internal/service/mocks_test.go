package service

import (
	"context"
	"time"

	"spotbook/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) CreateSpot(ctx context.Context, s *models.Spot) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockRepo) GetSpot(ctx context.Context, id int64) (*models.Spot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Spot), args.Error(1)
}
func (m *mockRepo) UpdateSpot(ctx context.Context, s *models.Spot) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockRepo) DeleteSpotCascade(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) SearchSpots(ctx context.Context, f models.SearchFilter) ([]*models.SpotWithRating, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SpotWithRating), args.Error(1)
}
func (m *mockRepo) GetOwnerSpots(ctx context.Context, ownerID int64) ([]*models.SpotWithRating, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SpotWithRating), args.Error(1)
}
func (m *mockRepo) AddSpotImage(ctx context.Context, i *models.SpotImage) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockRepo) DeleteSpotImage(ctx context.Context, id, spotID int64) error {
	return m.Called(ctx, id, spotID).Error(0)
}
func (m *mockRepo) GetSpotImages(ctx context.Context, spotID int64) ([]models.SpotImage, error) {
	args := m.Called(ctx, spotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SpotImage), args.Error(1)
}
func (m *mockRepo) CreateBookingTx(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) UpdateBookingTx(ctx context.Context, id int64, s, e time.Time) (*models.Booking, error) {
	args := m.Called(ctx, id, s, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) DeleteBooking(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) GetSpotBookings(ctx context.Context, spotID int64) ([]*models.BookingWithRenter, error) {
	args := m.Called(ctx, spotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingWithRenter), args.Error(1)
}
func (m *mockRepo) GetSpotBookingWindows(ctx context.Context, spotID int64) ([]*models.BookingWindow, error) {
	args := m.Called(ctx, spotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingWindow), args.Error(1)
}
func (m *mockRepo) GetUserBookings(ctx context.Context, userID int64) ([]*models.BookingWithSpot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingWithSpot), args.Error(1)
}
func (m *mockRepo) CreateReview(ctx context.Context, r *models.Review) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}
func (m *mockRepo) UpdateReview(ctx context.Context, id int64, body string, stars int64) error {
	return m.Called(ctx, id, body, stars).Error(0)
}
func (m *mockRepo) DeleteReview(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) GetSpotReviews(ctx context.Context, spotID int64) ([]*models.ReviewWithAuthor, error) {
	args := m.Called(ctx, spotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReviewWithAuthor), args.Error(1)
}
func (m *mockRepo) GetRating(ctx context.Context, spotID int64) (*models.RatingAggregate, error) {
	args := m.Called(ctx, spotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatingAggregate), args.Error(1)
}

// fixedClock pins "now" so past/future rules are deterministic.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
