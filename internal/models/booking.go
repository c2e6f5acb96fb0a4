package models

import "time"

// Booking reserves a spot for the half-open date range [StartDate, EndDate).
// Dates are calendar days; the time component is always midnight UTC.
type Booking struct {
	ID        int64     `json:"id"`
	SpotID    int64     `json:"spotId"`
	UserID    int64     `json:"userId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingWindow is the anonymized availability view shown to callers who do
// not own the spot: dates only, no renter identity.
type BookingWindow struct {
	SpotID    int64     `json:"spotId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// BookingWithRenter is the owner-facing view including who booked.
type BookingWithRenter struct {
	Booking
	Renter User `json:"renter"`
}

// BookingWithSpot annotates a booking with a denormalized snapshot of the
// spot's public fields at read time.
type BookingWithSpot struct {
	Booking
	Spot SpotSnapshot `json:"spot"`
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect. A checkout date
// equal to another booking's checkin date is not a conflict.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
