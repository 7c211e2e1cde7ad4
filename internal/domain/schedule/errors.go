package schedule

import "errors"

var (
	// ErrInvalidDate is returned when a date is not a real YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidWindow is returned when a window ends before it starts.
	ErrInvalidWindow = errors.New("invalid date window")
)
