// Package schedule groups competition units by civil day in a reference
// time zone and orders them for display.
package schedule

import (
	"sort"
	"time"

	"github.com/okian/medalboard/internal/domain/model"
)

// DateLayout is the civil date format used for keys and URLs.
const DateLayout = "2006-01-02"

// CivilDate returns the calendar date of t as observed in loc.
func CivilDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// BucketByDate keeps the units whose start falls on date in loc.
// Units without a start are always kept. Input order is preserved.
func BucketByDate(units []model.ScheduleUnit, date string, loc *time.Location) []model.ScheduleUnit {
	out := make([]model.ScheduleUnit, 0, len(units))
	for _, u := range units {
		if u.StartDate == nil || CivilDate(*u.StartDate, loc) == date {
			out = append(out, u)
		}
	}
	return out
}

// Partitioned is a day's units split by progress.
type Partitioned struct {
	NotFinished []model.ScheduleUnit `json:"notFinished"`
	Finished    []model.ScheduleUnit `json:"finished"`
	Other       []model.ScheduleUnit `json:"other"`
}

// Partition splits units into not finished (running first, then by start),
// finished (latest start first) and anything with an unrecognised status
// (by start). Units without a start sort last in their group.
func Partition(units []model.ScheduleUnit) Partitioned {
	p := Partitioned{
		NotFinished: []model.ScheduleUnit{},
		Finished:    []model.ScheduleUnit{},
		Other:       []model.ScheduleUnit{},
	}
	for _, u := range units {
		switch u.Status {
		case model.StatusScheduled, model.StatusRunning:
			p.NotFinished = append(p.NotFinished, u)
		case model.StatusFinished:
			p.Finished = append(p.Finished, u)
		default:
			p.Other = append(p.Other, u)
		}
	}

	sort.SliceStable(p.NotFinished, func(i, j int) bool {
		a, b := p.NotFinished[i], p.NotFinished[j]
		ra, rb := a.Status == model.StatusRunning, b.Status == model.StatusRunning
		if ra != rb {
			return ra
		}
		return startBefore(a, b, false)
	})
	sort.SliceStable(p.Finished, func(i, j int) bool {
		return startBefore(p.Finished[i], p.Finished[j], true)
	})
	sort.SliceStable(p.Other, func(i, j int) bool {
		return startBefore(p.Other[i], p.Other[j], false)
	})
	return p
}

func startBefore(a, b model.ScheduleUnit, desc bool) bool {
	switch {
	case a.StartDate == nil:
		return false
	case b.StartDate == nil:
		return true
	case desc:
		return a.StartDate.After(*b.StartDate)
	default:
		return a.StartDate.Before(*b.StartDate)
	}
}
