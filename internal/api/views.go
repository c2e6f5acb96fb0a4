package api

import (
	"time"

	"spotbook/internal/models"
)

// Booking dates travel as YYYY-MM-DD strings, so bookings get explicit view
// structs instead of marshaling the model's time.Time fields.
type bookingView struct {
	ID        int64     `json:"id"`
	SpotID    int64     `json:"spotId"`
	UserID    int64     `json:"userId"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newBookingView(b *models.Booking) bookingView {
	return bookingView{
		ID:        b.ID,
		SpotID:    b.SpotID,
		UserID:    b.UserID,
		StartDate: b.StartDate.Format(models.DateFormat),
		EndDate:   b.EndDate.Format(models.DateFormat),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

type bookingWindowView struct {
	SpotID    int64  `json:"spotId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func newBookingWindowViews(windows []*models.BookingWindow) []bookingWindowView {
	out := make([]bookingWindowView, 0, len(windows))
	for _, win := range windows {
		out = append(out, bookingWindowView{
			SpotID:    win.SpotID,
			StartDate: win.StartDate.Format(models.DateFormat),
			EndDate:   win.EndDate.Format(models.DateFormat),
		})
	}
	return out
}

type bookingWithRenterView struct {
	bookingView
	Renter models.User `json:"renter"`
}

func newBookingWithRenterViews(bookings []*models.BookingWithRenter) []bookingWithRenterView {
	out := make([]bookingWithRenterView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, bookingWithRenterView{
			bookingView: newBookingView(&b.Booking),
			Renter:      b.Renter,
		})
	}
	return out
}

type bookingWithSpotView struct {
	bookingView
	Spot models.SpotSnapshot `json:"spot"`
}

func newBookingWithSpotViews(bookings []*models.BookingWithSpot) []bookingWithSpotView {
	out := make([]bookingWithSpotView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, bookingWithSpotView{
			bookingView: newBookingView(&b.Booking),
			Spot:        b.Spot,
		})
	}
	return out
}
