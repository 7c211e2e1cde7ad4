package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/medalboard/internal/domain/model"
	"github.com/okian/medalboard/internal/domain/schedule"
	. "github.com/smartystreets/goconvey/convey"
)

func rome(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return loc
}

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func unit(name string, status model.UnitStatus, start *time.Time) model.ScheduleUnit {
	return model.ScheduleUnit{EventUnitName: name, Status: status, StartDate: start}
}

func names(units []model.ScheduleUnit) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, u.EventUnitName)
	}
	return out
}

func TestCivilDate(t *testing.T) {
	loc := rome(t)

	Convey("An instant late in the UTC evening belongs to the next Rome day", t, func() {
		So(schedule.CivilDate(*at("2026-02-10T23:30:00Z"), loc), ShouldEqual, "2026-02-11")
		So(schedule.CivilDate(*at("2026-02-10T22:59:59Z"), loc), ShouldEqual, "2026-02-10")
	})

	Convey("Offsets in the source timestamp do not matter", t, func() {
		So(schedule.CivilDate(*at("2026-02-11T08:00:00+09:00"), loc), ShouldEqual, "2026-02-11")
		So(schedule.CivilDate(*at("2026-02-11T00:30:00+01:00"), loc), ShouldEqual, "2026-02-11")
	})
}

func TestBucketByDate(t *testing.T) {
	loc := rome(t)

	Convey("Given units spread around midnight", t, func() {
		units := []model.ScheduleUnit{
			unit("late", model.StatusScheduled, at("2026-02-10T23:30:00Z")),
			unit("evening", model.StatusScheduled, at("2026-02-10T20:00:00Z")),
			unit("undated", model.StatusScheduled, nil),
			unit("morning", model.StatusScheduled, at("2026-02-11T09:00:00Z")),
		}

		Convey("Then only the zoned day's units survive, undated ones included", func() {
			So(names(schedule.BucketByDate(units, "2026-02-11", loc)), ShouldResemble,
				[]string{"late", "undated", "morning"})
			So(names(schedule.BucketByDate(units, "2026-02-10", loc)), ShouldResemble,
				[]string{"evening", "undated"})
		})

		Convey("Then an empty input yields an empty result", func() {
			So(schedule.BucketByDate(nil, "2026-02-11", loc), ShouldBeEmpty)
		})
	})
}

func TestPartition(t *testing.T) {
	Convey("Given a mixed day", t, func() {
		units := []model.ScheduleUnit{
			unit("s-late", model.StatusScheduled, at("2026-02-11T15:00:00Z")),
			unit("f-early", model.StatusFinished, at("2026-02-11T08:00:00Z")),
			unit("r-late", model.StatusRunning, at("2026-02-11T12:00:00Z")),
			unit("s-early", model.StatusScheduled, at("2026-02-11T09:00:00Z")),
			unit("f-late", model.StatusFinished, at("2026-02-11T11:00:00Z")),
			unit("s-none", model.StatusScheduled, nil),
			unit("r-early", model.StatusRunning, at("2026-02-11T10:00:00Z")),
			unit("x-post", model.UnitStatus("POSTPONED"), at("2026-02-11T13:00:00Z")),
			unit("x-canc", model.UnitStatus("CANCELLED"), at("2026-02-11T07:00:00Z")),
		}

		p := schedule.Partition(units)

		Convey("Then running units lead the not-finished group, then by start", func() {
			So(names(p.NotFinished), ShouldResemble,
				[]string{"r-early", "r-late", "s-early", "s-late", "s-none"})
		})

		Convey("Then finished units are latest first", func() {
			So(names(p.Finished), ShouldResemble, []string{"f-late", "f-early"})
		})

		Convey("Then other statuses are kept apart in start order", func() {
			So(names(p.Other), ShouldResemble, []string{"x-canc", "x-post"})
		})

		Convey("Then every unit lands in exactly one group", func() {
			So(len(p.NotFinished)+len(p.Finished)+len(p.Other), ShouldEqual, len(units))
		})

		Convey("Then every running unit precedes every scheduled one", func() {
			seenScheduled := false
			for _, u := range p.NotFinished {
				if u.Status == model.StatusScheduled {
					seenScheduled = true
				}
				if u.Status == model.StatusRunning {
					So(seenScheduled, ShouldBeFalse)
				}
			}
		})
	})

	Convey("Given nothing", t, func() {
		p := schedule.Partition(nil)
		So(p.NotFinished, ShouldBeEmpty)
		So(p.Finished, ShouldBeEmpty)
		So(p.Other, ShouldBeEmpty)
	})
}

func TestWindow(t *testing.T) {
	loc := rome(t)

	Convey("Given the schedule window", t, func() {
		w, err := schedule.NewWindow("2026-02-04", "2026-02-22")
		So(err, ShouldBeNil)

		Convey("Then dates outside are clamped to the bounds", func() {
			So(w.Clamp("2026-01-30"), ShouldEqual, "2026-02-04")
			So(w.Clamp("2026-03-01"), ShouldEqual, "2026-02-22")
			So(w.Clamp("2026-02-10"), ShouldEqual, "2026-02-10")
		})

		Convey("Then Contains is inclusive", func() {
			So(w.Contains("2026-02-04"), ShouldBeTrue)
			So(w.Contains("2026-02-22"), ShouldBeTrue)
			So(w.Contains("2026-02-23"), ShouldBeFalse)
		})

		Convey("Then Days enumerates the whole window", func() {
			days := w.Days()
			So(days, ShouldHaveLength, 19)
			So(days[0], ShouldEqual, "2026-02-04")
			So(days[18], ShouldEqual, "2026-02-22")
		})

		Convey("Then Today is zoned and clamped", func() {
			So(w.Today(*at("2026-02-10T23:30:00Z"), loc), ShouldEqual, "2026-02-11")
			So(w.Today(*at("2025-12-25T12:00:00Z"), loc), ShouldEqual, "2026-02-04")
		})
	})

	Convey("Given the Games window", t, func() {
		w, err := schedule.NewWindow("2026-02-06", "2026-02-22")
		So(err, ShouldBeNil)

		So(w.Period(*at("2026-02-05T22:59:00Z"), loc), ShouldEqual, schedule.Before)
		So(w.Period(*at("2026-02-05T23:01:00Z"), loc), ShouldEqual, schedule.During)
		So(w.Period(*at("2026-02-22T22:59:00Z"), loc), ShouldEqual, schedule.During)
		So(w.Period(*at("2026-02-22T23:01:00Z"), loc), ShouldEqual, schedule.After)
	})

	Convey("Invalid windows and dates are rejected", t, func() {
		_, err := schedule.NewWindow("2026-02-22", "2026-02-04")
		So(errors.Is(err, schedule.ErrInvalidWindow), ShouldBeTrue)

		_, err = schedule.ParseDate("2026-02-30")
		So(errors.Is(err, schedule.ErrInvalidDate), ShouldBeTrue)

		next, err := schedule.AddDays("2026-02-28", 1)
		So(err, ShouldBeNil)
		So(next, ShouldEqual, "2026-03-01")
	})
}
