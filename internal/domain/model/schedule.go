package model

import (
	"encoding/json"
	"time"
)

// localLayouts are offset-less forms the feed occasionally sends; they are
// read as Games local time.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

var gamesZone = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// UnitStatus is the lifecycle state of a schedule unit.
type UnitStatus string

// Known statuses. The feed may send others; they are kept verbatim.
const (
	StatusScheduled UnitStatus = "SCHEDULED"
	StatusRunning   UnitStatus = "RUNNING"
	StatusFinished  UnitStatus = "FINISHED"
)

// Schedule is the per-day lite schedule resource.
type Schedule struct {
	Units []ScheduleUnit `json:"units"`
}

// ScheduleUnit is one competition unit (a heat, a run, a final...).
type ScheduleUnit struct {
	DisciplineName   string     `json:"disciplineName"`
	EventName        string     `json:"eventName"`
	EventUnitName    string     `json:"eventUnitName"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	HideEndDate      bool       `json:"hideEndDate"`
	VenueDescription string     `json:"venueDescription,omitempty"`
	PhaseName        string     `json:"phaseName,omitempty"`
	Status           UnitStatus `json:"status"`
	MedalEvent       bool       `json:"medalEvent"`
}

// UnmarshalJSON reads RFC 3339 timestamps. Offset-less ones are taken in
// Europe/Rome; empty, null or unreadable ones decode as absent so a single
// bad unit does not sink the whole day.
func (u *ScheduleUnit) UnmarshalJSON(b []byte) error {
	type plain ScheduleUnit
	var raw struct {
		plain
		StartDate *string `json:"startDate"`
		EndDate   *string `json:"endDate"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*u = ScheduleUnit(raw.plain)
	u.StartDate = parseInstant(raw.StartDate)
	u.EndDate = parseInstant(raw.EndDate)
	return nil
}

func parseInstant(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, *s); err == nil {
		return &t
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, *s, gamesZone); err == nil {
			return &t
		}
	}
	return nil
}

// Finished reports whether the unit is over.
func (u ScheduleUnit) Finished() bool { return u.Status == StatusFinished }

// VisibleEnd returns the end time unless the feed asks to hide it.
func (u ScheduleUnit) VisibleEnd() (time.Time, bool) {
	if u.EndDate == nil || u.HideEndDate {
		return time.Time{}, false
	}
	return *u.EndDate, true
}

// Title is the unit name, falling back to the event name.
func (u ScheduleUnit) Title() string {
	if u.EventUnitName != "" {
		return u.EventUnitName
	}
	return u.EventName
}
