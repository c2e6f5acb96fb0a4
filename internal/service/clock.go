package service

import "time"

// SystemClock reads the wall clock. Tests substitute a fixed clock to pin
// "today" for past/future boundary checks.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
