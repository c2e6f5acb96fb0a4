package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound wraps every lookup miss; callers match it with errors.Is.
	ErrNotFound = errors.New("not found")

	// ErrBookingConflict signals the requested range overlaps an existing
	// booking for the same spot.
	ErrBookingConflict = errors.New("booking dates conflict with an existing booking")

	// ErrDuplicateAddress signals a spot with the same address already exists.
	ErrDuplicateAddress = errors.New("spot address already in use")

	// ErrDuplicateReview signals the user already reviewed the spot.
	ErrDuplicateReview = errors.New("review already exists for this spot and user")
)

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
