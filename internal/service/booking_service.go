package service

import (
	"context"
	"errors"
	"time"

	"spotbook/internal/database"
	"spotbook/internal/domain"
	"spotbook/internal/events"
	"spotbook/internal/models"

	"github.com/rs/zerolog"
)

// BookingService is the booking conflict engine. It enforces the half-open
// overlap rule, the ownership rules and the past-date rules; the atomic
// check-then-write itself happens in the repository transaction.
type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, clock domain.Clock, logger *zerolog.Logger) *BookingService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger,
	}
}

func (s *BookingService) today() time.Time {
	return models.Day(s.clock.Now())
}

func validateRange(start, end time.Time) *Error {
	if !end.After(start) {
		return InvalidError("Bad Request", map[string]string{
			"endDate": "endDate cannot be on or before startDate",
		})
	}
	return nil
}

func conflictError() *Error {
	return ConflictError("Sorry, this spot is already booked for the specified dates", map[string]string{
		"startDate": "Start date conflicts with an existing booking",
		"endDate":   "End date conflicts with an existing booking",
	})
}

// CreateBooking books [start, end) on a spot for renterID.
func (s *BookingService) CreateBooking(ctx context.Context, spotID, renterID int64, start, end time.Time) (*models.Booking, error) {
	spot, err := s.repo.GetSpot(ctx, spotID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, NotFoundError("Spot couldn't be found")
		}
		return nil, InternalError(err)
	}

	if spot.OwnerID == renterID {
		return nil, ForbiddenError("You are not authorized to create a booking for your own spot")
	}

	start, end = models.Day(start), models.Day(end)
	if verr := validateRange(start, end); verr != nil {
		return nil, verr
	}

	// Reject against the committed windows before taking the write lock.
	// The insert re-checks inside the transaction and stays authoritative.
	windows, err := s.repo.GetSpotBookingWindows(ctx, spotID)
	if err != nil {
		return nil, InternalError(err)
	}
	for _, win := range windows {
		if models.Overlaps(start, end, win.StartDate, win.EndDate) {
			return nil, conflictError()
		}
	}

	booking := &models.Booking{
		SpotID:    spotID,
		UserID:    renterID,
		StartDate: start,
		EndDate:   end,
	}
	if err := s.repo.CreateBookingTx(ctx, booking); err != nil {
		if errors.Is(err, database.ErrBookingConflict) {
			return nil, conflictError()
		}
		return nil, InternalError(err)
	}

	s.publishEvent(events.EventBookingCreated, booking)
	return booking, nil
}

// UpdateBooking moves a booking to [newStart, newEnd). Only the original
// renter may do this, and only while the booking has not yet ended.
func (s *BookingService) UpdateBooking(ctx context.Context, bookingID, requesterID int64, newStart, newEnd time.Time) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, NotFoundError("Booking couldn't be found")
		}
		return nil, InternalError(err)
	}

	if booking.UserID != requesterID {
		return nil, ForbiddenError("You are not authorized to modify this booking")
	}

	// A booking is past once its end date is today or earlier.
	if !booking.EndDate.After(s.today()) {
		return nil, ForbiddenError("Past bookings can't be modified")
	}

	newStart, newEnd = models.Day(newStart), models.Day(newEnd)
	if verr := validateRange(newStart, newEnd); verr != nil {
		return nil, verr
	}

	updated, err := s.repo.UpdateBookingTx(ctx, bookingID, newStart, newEnd)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrBookingConflict):
			return nil, conflictError()
		case errors.Is(err, database.ErrNotFound):
			return nil, NotFoundError("Booking couldn't be found")
		default:
			return nil, InternalError(err)
		}
	}

	s.publishEvent(events.EventBookingUpdated, updated)
	return updated, nil
}

// CancelBooking deletes a booking before its start date. Allowed to the
// renter or to the owner of the booked spot.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, requesterID int64) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return NotFoundError("Booking couldn't be found")
		}
		return InternalError(err)
	}

	if !s.today().Before(booking.StartDate) {
		return ForbiddenError("Bookings that have been started can't be deleted")
	}

	if booking.UserID != requesterID {
		spot, err := s.repo.GetSpot(ctx, booking.SpotID)
		if err != nil {
			return InternalError(err)
		}
		if spot.OwnerID != requesterID {
			return ForbiddenError("You are not authorized to delete this booking")
		}
	}

	if err := s.repo.DeleteBooking(ctx, bookingID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return NotFoundError("Booking couldn't be found")
		}
		return InternalError(err)
	}

	s.publishEvent(events.EventBookingCanceled, booking)
	return nil
}

// SpotBookings is either the owner-facing view with renter identity or the
// anonymized windows, never both.
type SpotBookings struct {
	Full    []*models.BookingWithRenter
	Windows []*models.BookingWindow
}

// ListSpotBookings returns full records when the requester owns the spot and
// anonymized date windows otherwise.
func (s *BookingService) ListSpotBookings(ctx context.Context, spotID, requesterID int64) (*SpotBookings, error) {
	spot, err := s.repo.GetSpot(ctx, spotID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, NotFoundError("Spot couldn't be found")
		}
		return nil, InternalError(err)
	}

	if spot.OwnerID == requesterID {
		full, err := s.repo.GetSpotBookings(ctx, spotID)
		if err != nil {
			return nil, InternalError(err)
		}
		return &SpotBookings{Full: full}, nil
	}

	windows, err := s.repo.GetSpotBookingWindows(ctx, spotID)
	if err != nil {
		return nil, InternalError(err)
	}
	return &SpotBookings{Windows: windows}, nil
}

// ListUserBookings returns every booking made by userID with the spot
// snapshot joined in.
func (s *BookingService) ListUserBookings(ctx context.Context, userID int64) ([]*models.BookingWithSpot, error) {
	bookings, err := s.repo.GetUserBookings(ctx, userID)
	if err != nil {
		return nil, InternalError(err)
	}
	return bookings, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		SpotID:    booking.SpotID,
		UserID:    booking.UserID,
		StartDate: booking.StartDate,
		EndDate:   booking.EndDate,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
