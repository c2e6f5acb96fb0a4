package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spotbook/internal/models"
)

const bookingColumns = `id, spot_id, user_id, start_date, end_date, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	var startStr, endStr string
	err := row.Scan(&b.ID, &b.SpotID, &b.UserID, &startStr, &endStr, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if b.StartDate, err = models.ParseDate(startStr); err != nil {
		return nil, fmt.Errorf("failed to parse booking start date %s: %w", startStr, err)
	}
	if b.EndDate, err = models.ParseDate(endStr); err != nil {
		return nil, fmt.Errorf("failed to parse booking end date %s: %w", endStr, err)
	}
	return b, nil
}

// CreateBookingTx runs the overlap check and the insert in one transaction.
// The connection opens transactions with an immediate write lock, so two
// concurrent calls for the same spot serialize and the loser sees the
// winner's row.
func (db *DB) CreateBookingTx(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	conflicts, err := countOverlaps(ctx, tx, booking.SpotID, 0, booking.StartDate, booking.EndDate)
	if err != nil {
		return err
	}
	if conflicts > 0 {
		return ErrBookingConflict
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (spot_id, user_id, start_date, end_date, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		booking.SpotID,
		booking.UserID,
		booking.StartDate.Format(models.DateFormat),
		booking.EndDate.Format(models.DateFormat),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return tx.Commit()
}

// UpdateBookingTx changes a booking's dates, re-running the overlap check in
// the same transaction with the booking itself excluded from the candidates.
func (db *DB) UpdateBookingTx(ctx context.Context, id int64, newStart, newEnd time.Time) (*models.Booking, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	booking, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	conflicts, err := countOverlaps(ctx, tx, booking.SpotID, id, newStart, newEnd)
	if err != nil {
		return nil, err
	}
	if conflicts > 0 {
		return nil, ErrBookingConflict
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`UPDATE bookings SET start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		newStart.Format(models.DateFormat),
		newEnd.Format(models.DateFormat),
		now,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	booking.StartDate = newStart
	booking.EndDate = newEnd
	booking.UpdatedAt = now

	return booking, tx.Commit()
}

// countOverlaps counts bookings for spotID intersecting [start, end) under
// the half-open rule: s1 < e2 AND s2 < e1. excludeID skips the booking being
// updated; zero excludes nothing.
func countOverlaps(ctx context.Context, tx *sql.Tx, spotID, excludeID int64, start, end time.Time) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
         WHERE spot_id = ? AND id != ? AND start_date < ? AND end_date > ?`,
		spotID,
		excludeID,
		end.Format(models.DateFormat),
		start.Format(models.DateFormat),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	booking, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// DeleteBooking removes a booking row. Deleting a row that is already gone
// reports ErrNotFound so a repeated cancel surfaces as a 404, not a crash.
func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetSpotBookings returns every booking for a spot with the renter's public
// profile joined in. Owner-only view.
func (db *DB) GetSpotBookings(ctx context.Context, spotID int64) ([]*models.BookingWithRenter, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT b.id, b.spot_id, b.user_id, b.start_date, b.end_date, b.created_at, b.updated_at,
                u.id, u.first_name, u.last_name
         FROM bookings b
         JOIN users u ON u.id = b.user_id
         WHERE b.spot_id = ?
         ORDER BY b.start_date ASC`, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get spot bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.BookingWithRenter
	for rows.Next() {
		b := &models.BookingWithRenter{}
		var startStr, endStr string
		err := rows.Scan(
			&b.ID, &b.SpotID, &b.UserID, &startStr, &endStr, &b.CreatedAt, &b.UpdatedAt,
			&b.Renter.ID, &b.Renter.FirstName, &b.Renter.LastName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		if b.StartDate, err = models.ParseDate(startStr); err != nil {
			return nil, fmt.Errorf("failed to parse booking start date %s: %w", startStr, err)
		}
		if b.EndDate, err = models.ParseDate(endStr); err != nil {
			return nil, fmt.Errorf("failed to parse booking end date %s: %w", endStr, err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetSpotBookingWindows returns the anonymized date ranges for a spot, enough
// to compute availability without leaking renter identity.
func (db *DB) GetSpotBookingWindows(ctx context.Context, spotID int64) ([]*models.BookingWindow, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT spot_id, start_date, end_date FROM bookings
         WHERE spot_id = ? ORDER BY start_date ASC`, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking windows: %w", err)
	}
	defer rows.Close()

	var windows []*models.BookingWindow
	for rows.Next() {
		w := &models.BookingWindow{}
		var startStr, endStr string
		if err := rows.Scan(&w.SpotID, &startStr, &endStr); err != nil {
			return nil, fmt.Errorf("failed to scan booking window: %w", err)
		}
		if w.StartDate, err = models.ParseDate(startStr); err != nil {
			return nil, fmt.Errorf("failed to parse booking start date %s: %w", startStr, err)
		}
		if w.EndDate, err = models.ParseDate(endStr); err != nil {
			return nil, fmt.Errorf("failed to parse booking end date %s: %w", endStr, err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// GetUserBookings returns every booking made by a user with a snapshot of the
// spot's public fields and preview image taken at read time.
func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.BookingWithSpot, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT b.id, b.spot_id, b.user_id, b.start_date, b.end_date, b.created_at, b.updated_at,
                s.id, s.owner_id, s.address, s.city, s.state, s.country, s.lat, s.lng,
                s.name, s.description, s.price, s.created_at, s.updated_at,
                COALESCE((SELECT i.url FROM spot_images i
                          WHERE i.spot_id = s.id AND i.preview = 1
                          ORDER BY i.id LIMIT 1), '')
         FROM bookings b
         JOIN spots s ON s.id = b.spot_id
         WHERE b.user_id = ?
         ORDER BY b.start_date ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.BookingWithSpot
	for rows.Next() {
		b := &models.BookingWithSpot{}
		var startStr, endStr string
		err := rows.Scan(
			&b.ID, &b.SpotID, &b.UserID, &startStr, &endStr, &b.CreatedAt, &b.UpdatedAt,
			&b.Spot.ID, &b.Spot.OwnerID, &b.Spot.Address, &b.Spot.City, &b.Spot.State,
			&b.Spot.Country, &b.Spot.Lat, &b.Spot.Lng, &b.Spot.Name, &b.Spot.Description,
			&b.Spot.Price, &b.Spot.CreatedAt, &b.Spot.UpdatedAt, &b.Spot.PreviewImage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		if b.StartDate, err = models.ParseDate(startStr); err != nil {
			return nil, fmt.Errorf("failed to parse booking start date %s: %w", startStr, err)
		}
		if b.EndDate, err = models.ParseDate(endStr); err != nil {
			return nil, fmt.Errorf("failed to parse booking end date %s: %w", endStr, err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
