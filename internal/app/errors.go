package service

import "errors"

var (
	// ErrInvalidDate is returned for a date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
	// ErrDateOutOfRange is returned for a date outside the schedule window.
	ErrDateOutOfRange = errors.New("date outside the schedule window")
	// ErrInvalidRefreshSpec is returned by Start when the cron spec does not parse.
	ErrInvalidRefreshSpec = errors.New("invalid refresh schedule")
)
