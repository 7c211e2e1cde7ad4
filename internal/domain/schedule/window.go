package schedule

import (
	"fmt"
	"time"
)

// ParseDate validates a YYYY-MM-DD string and returns it as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// AddDays shifts a civil date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// Window is an inclusive range of civil dates.
type Window struct {
	Start string
	End   string
}

// NewWindow validates both bounds.
func NewWindow(start, end string) (Window, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Window{}, err
	}
	if e.Before(s) {
		return Window{}, fmt.Errorf("%w: %s after %s", ErrInvalidWindow, start, end)
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports whether date lies within the window. YYYY-MM-DD strings
// order lexically the same as chronologically.
func (w Window) Contains(date string) bool {
	return date >= w.Start && date <= w.End
}

// Clamp pulls date into the window.
func (w Window) Clamp(date string) string {
	switch {
	case date < w.Start:
		return w.Start
	case date > w.End:
		return w.End
	default:
		return date
	}
}

// Days lists every date in the window in order.
func (w Window) Days() []string {
	var out []string
	for d := w.Start; d <= w.End; {
		out = append(out, d)
		next, err := AddDays(d, 1)
		if err != nil {
			break
		}
		d = next
	}
	return out
}

// Today returns the civil date of now in loc, clamped to the window.
func (w Window) Today(now time.Time, loc *time.Location) string {
	return w.Clamp(CivilDate(now, loc))
}

// Phase locates a moment relative to a window.
type Phase string

// Phases of the Games.
const (
	Before Phase = "before"
	During Phase = "during"
	After  Phase = "after"
)

// Period reports whether now falls before, during or after the window in loc.
func (w Window) Period(now time.Time, loc *time.Location) Phase {
	d := CivilDate(now, loc)
	switch {
	case d < w.Start:
		return Before
	case d > w.End:
		return After
	default:
		return During
	}
}
