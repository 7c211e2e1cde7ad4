package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/medalboard/internal/adapters/feed"
	service "github.com/okian/medalboard/internal/app"
	"github.com/okian/medalboard/internal/config"
	"github.com/okian/medalboard/internal/domain/model"
	"github.com/okian/medalboard/internal/domain/podium"
	"github.com/okian/medalboard/internal/domain/schedule"
	"github.com/okian/medalboard/pkg/logger"
	"github.com/okian/medalboard/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type fakeFeed struct {
	mu            sync.Mutex
	medalsErr     error
	medallistsErr error
	scheduleErr   error
	units         []model.ScheduleUnit
	athletes      []model.Medallist

	medalCalls     int32
	medallistCalls int32
	scheduleCalls  int32
}

func (f *fakeFeed) setErrs(medals, medallists error) {
	f.mu.Lock()
	f.medalsErr, f.medallistsErr = medals, medallists
	f.mu.Unlock()
}

func (f *fakeFeed) Medals(context.Context) (model.StandingsFeed, error) {
	atomic.AddInt32(&f.medalCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.medalsErr != nil {
		return model.StandingsFeed{}, f.medalsErr
	}
	return model.StandingsFeed{MedalStandings: &model.MedalTable{Rows: []model.MedalStanding{
		{OrganisationCode: "NOR", Rank: 1},
	}}}, nil
}

func (f *fakeFeed) Medallists(context.Context) (model.MedallistsFeed, error) {
	atomic.AddInt32(&f.medallistCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.medallistsErr != nil {
		return model.MedallistsFeed{}, f.medallistsErr
	}
	return model.MedallistsFeed{Athletes: f.athletes}, nil
}

func (f *fakeFeed) DailySchedule(context.Context, string) (model.Schedule, error) {
	atomic.AddInt32(&f.scheduleCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scheduleErr != nil {
		return model.Schedule{}, f.scheduleErr
	}
	return model.Schedule{Units: f.units}, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func newService(f *fakeFeed, c *clock, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithFeed(f),
		service.WithClock(c.Now),
		service.WithCacheTTL(time.Minute),
		service.WithInitialRefresh(false),
	}
	return service.New(append(base, opts...)...)
}

func TestService_Feeds(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service over a fake feed", t, func() {
		f := &fakeFeed{}
		c := &clock{now: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
		svc := newService(f, c)

		Convey("When medals are read twice within the TTL", func() {
			_, err := svc.Medals(ctx, false)
			So(err, ShouldBeNil)
			c.Advance(30 * time.Second)
			got, err := svc.Medals(ctx, false)

			Convey("Then the feed is hit once", func() {
				So(err, ShouldBeNil)
				So(got.Rows(), ShouldHaveLength, 1)
				So(atomic.LoadInt32(&f.medalCalls), ShouldEqual, 1)
			})

			Convey("And a forced read goes to the feed", func() {
				_, err := svc.Medals(ctx, true)
				So(err, ShouldBeNil)
				So(atomic.LoadInt32(&f.medalCalls), ShouldEqual, 2)
			})
		})

		Convey("When nothing has loaded", func() {
			_, ok := svc.LastUpdate()
			So(ok, ShouldBeFalse)
			So(svc.LastUpdateISO(), ShouldBeNil)
		})

		Convey("When a schedule date is malformed", func() {
			_, err := svc.DailySchedule(ctx, "11/02/2026", false)
			So(errors.Is(err, service.ErrInvalidDate), ShouldBeTrue)
			So(atomic.LoadInt32(&f.scheduleCalls), ShouldEqual, 0)
		})

		Convey("When a schedule date is outside the window", func() {
			_, err := svc.DailySchedule(ctx, "2026-03-01", false)
			So(errors.Is(err, service.ErrDateOutOfRange), ShouldBeTrue)
			So(atomic.LoadInt32(&f.scheduleCalls), ShouldEqual, 0)
		})

		Convey("When schedules of two dates are read", func() {
			_, err := svc.DailySchedule(ctx, "2026-02-10", false)
			So(err, ShouldBeNil)
			_, err = svc.DailySchedule(ctx, "2026-02-11", false)
			So(err, ShouldBeNil)
			_, err = svc.DailySchedule(ctx, "2026-02-10", false)
			So(err, ShouldBeNil)

			Convey("Then each date is cached on its own", func() {
				So(atomic.LoadInt32(&f.scheduleCalls), ShouldEqual, 2)
				So(svc.GetStats()["cacheKeys"], ShouldResemble, []string{"schedule:2026-02-10", "schedule:2026-02-11"})
			})

			Convey("Then a schedule load advances the last update", func() {
				at, ok := svc.LastUpdate()
				So(ok, ShouldBeTrue)
				So(at.Equal(c.Now()), ShouldBeTrue)
			})
		})

		Convey("Then Today is zoned and clamped", func() {
			So(svc.Today(), ShouldEqual, "2026-02-10")
			c.Advance(30 * 24 * time.Hour)
			So(svc.Today(), ShouldEqual, "2026-02-22")
		})
	})
}

func TestService_RefreshAll(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service whose medals feed fails", t, func() {
		f := &fakeFeed{}
		f.setErrs(&feed.HTTPError{Path: "/medals", StatusCode: 503}, nil)
		c := &clock{now: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
		svc := newService(f, c)

		Convey("When refreshing everything", func() {
			out := svc.RefreshAll(ctx)

			Convey("Then medallists still load and the last update advances", func() {
				So(out.RunID, ShouldNotBeEmpty)
				So(out.Medals.OK(), ShouldBeFalse)
				So(errors.Is(out.Medals.Err, feed.ErrHTTPStatus), ShouldBeTrue)
				So(out.Medallists.OK(), ShouldBeTrue)
				So(out.Success(), ShouldBeFalse)
				So(out.LastUpdate, ShouldNotBeNil)
				So(*out.LastUpdate, ShouldEqual, "2026-02-10T12:00:00Z")
			})

			Convey("Then the run is counted", func() {
				stats := svc.GetStats()
				So(stats["refreshRuns"], ShouldEqual, 1)
				So(stats["lastRunID"], ShouldEqual, out.RunID)
			})
		})
	})

	Convey("Given a service whose feeds both fail", t, func() {
		f := &fakeFeed{}
		c := &clock{now: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
		svc := newService(f, c)

		first := svc.RefreshAll(ctx)
		So(first.Success(), ShouldBeTrue)

		f.setErrs(errors.New("dns"), errors.New("dns"))
		c.Advance(5 * time.Minute)
		second := svc.RefreshAll(ctx)

		Convey("Then the last update stays at the previous success", func() {
			So(second.Success(), ShouldBeFalse)
			So(*second.LastUpdate, ShouldEqual, *first.LastUpdate)
		})

		Convey("Then the cached standings survive", func() {
			got, err := svc.Medals(ctx, false)
			So(err, ShouldBeNil)
			So(got.Rows(), ShouldHaveLength, 1)
			So(atomic.LoadInt32(&f.medalCalls), ShouldEqual, 2)
		})

		Convey("Then the feed is retried once the TTL has passed since the failure", func() {
			c.Advance(time.Minute)
			_, err := svc.Medals(ctx, false)
			So(err, ShouldNotBeNil)
			So(atomic.LoadInt32(&f.medalCalls), ShouldEqual, 3)
		})

		Convey("Then each run has its own id", func() {
			So(second.RunID, ShouldNotEqual, first.RunID)
		})
	})
}

func lastUpdateGauge() float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, mf := range families {
		if strings.HasSuffix(mf.GetName(), "last_update_timestamp_seconds") && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return -1
}

func TestService_LastUpdateGauge(t *testing.T) {
	ctx := context.Background()

	Convey("Given a load followed by one stamped earlier", t, func() {
		f := &fakeFeed{}
		c := &clock{now: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
		svc := newService(f, c)

		_, err := svc.Medals(ctx, true)
		So(err, ShouldBeNil)
		c.Advance(-time.Hour)
		_, err = svc.Medallists(ctx, true)
		So(err, ShouldBeNil)

		Convey("Then the marker and the gauge both keep the later time", func() {
			last, ok := svc.LastUpdate()
			So(ok, ShouldBeTrue)
			want := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
			So(last.Equal(want), ShouldBeTrue)
			So(lastUpdateGauge(), ShouldEqual, float64(want.Unix()))
		})
	})
}

func TestService_Board(t *testing.T) {
	ctx := context.Background()

	Convey("Given a day with a finished medal event", t, func() {
		f := &fakeFeed{
			units: []model.ScheduleUnit{
				{DisciplineName: "Ski Alpin", EventName: "Descente Hommes", Status: model.StatusFinished,
					MedalEvent: true, StartDate: ts("2026-02-07T10:30:00Z")},
				{DisciplineName: "Curling", EventName: "Double mixte", Status: model.StatusRunning,
					StartDate: ts("2026-02-07T12:00:00Z")},
				{DisciplineName: "Luge", EventName: "Simple", Status: model.StatusScheduled,
					StartDate: ts("2026-02-07T23:30:00Z")},
			},
			athletes: []model.Medallist{
				{TVName: "BRONZE B", OrganisationCode: "AUT", Medals: []model.Medal{
					{MedalType: model.Bronze, DisciplineName: "Ski Alpin", EventName: "Descente Hommes"}}},
				{TVName: "GOLD G", OrganisationCode: "SUI", Medals: []model.Medal{
					{MedalType: model.Gold, DisciplineName: "Ski Alpin", EventName: "Descente Hommes"}}},
			},
		}
		c := &clock{now: time.Date(2026, 2, 7, 15, 0, 0, 0, time.UTC)}
		svc := newService(f, c)

		Convey("When building the board", func() {
			b, err := svc.Board(ctx, "2026-02-07", false)

			Convey("Then units are bucketed in Rome and partitioned", func() {
				So(err, ShouldBeNil)
				So(b.Period, ShouldEqual, schedule.During)
				So(b.NotFinished, ShouldHaveLength, 1)
				So(b.NotFinished[0].EventName, ShouldEqual, "Double mixte")
				So(b.Finished, ShouldHaveLength, 1)
			})

			Convey("Then the finished unit carries its podium", func() {
				p := b.Finished[0].Podium
				So(p, ShouldHaveLength, 2)
				So(p[0].AthleteName, ShouldEqual, "GOLD G")
				So(p[1].MedalType, ShouldEqual, model.Bronze)
				So(b.NotFinished[0].Podium, ShouldBeEmpty)
			})
		})

		Convey("When the medallists feed fails", func() {
			f.setErrs(nil, errors.New("HTTP 500"))
			b, err := svc.Board(ctx, "2026-02-07", false)

			Convey("Then the board still renders without podiums", func() {
				So(err, ShouldBeNil)
				So(b.MedallistsError, ShouldContainSubstring, "HTTP 500")
				So(b.Finished[0].Podium, ShouldBeEmpty)
			})
		})

		Convey("When the schedule feed fails", func() {
			f.mu.Lock()
			f.scheduleErr = errors.New("timeout")
			f.mu.Unlock()
			_, err := svc.Board(ctx, "2026-02-07", false)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestBoardUnit_JSON(t *testing.T) {
	Convey("Given a finished unit with a podium", t, func() {
		in := service.BoardUnit{
			ScheduleUnit: model.ScheduleUnit{DisciplineName: "Ski Alpin", EventName: "Descente Hommes",
				Status: model.StatusFinished, MedalEvent: true, StartDate: ts("2026-02-07T10:30:00Z")},
			Podium: []podium.Result{{AthleteName: "GOLD G", OrganisationCode: "SUI", MedalType: model.Gold}},
		}

		Convey("When it is encoded and decoded again", func() {
			raw, err := json.Marshal(in)
			So(err, ShouldBeNil)
			var out service.BoardUnit
			So(json.Unmarshal(raw, &out), ShouldBeNil)

			Convey("Then both the unit and the podium survive", func() {
				So(out.EventName, ShouldEqual, "Descente Hommes")
				So(out.StartDate, ShouldNotBeNil)
				So(out.StartDate.Equal(*in.StartDate), ShouldBeTrue)
				So(out.Podium, ShouldResemble, in.Podium)
			})
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a service with an initial refresh", t, func() {
		f := &fakeFeed{}
		c := &clock{now: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
		svc := newService(f, c, service.WithInitialRefresh(true), service.WithRefreshSpec("@every 1h"))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting and stopping", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
			svc.Stop()

			Convey("Then the initial refresh has completed", func() {
				So(atomic.LoadInt32(&f.medalCalls), ShouldEqual, 1)
				So(atomic.LoadInt32(&f.medallistCalls), ShouldEqual, 1)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("And stopping twice is harmless", func() {
				svc.Stop()
			})
		})
	})

	Convey("Given a service on a one second refresh tick", t, func() {
		f := &fakeFeed{}
		c := &clock{now: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
		svc := newService(f, c, service.WithRefreshSpec("@every 1s"))

		So(svc.Start(context.Background()), ShouldBeNil)
		deadline := time.Now().Add(5 * time.Second)
		for atomic.LoadInt32(&f.medalCalls) == 0 && time.Now().Before(deadline) {
			time.Sleep(50 * time.Millisecond)
		}
		svc.Stop()

		Convey("Then the tick refreshes both feeds", func() {
			So(atomic.LoadInt32(&f.medalCalls), ShouldBeGreaterThanOrEqualTo, 1)
			So(atomic.LoadInt32(&f.medallistCalls), ShouldBeGreaterThanOrEqualTo, 1)
			So(svc.GetStats()["refreshRuns"], ShouldBeGreaterThanOrEqualTo, 1)
		})

		Convey("Then no tick fires after Stop", func() {
			before := atomic.LoadInt32(&f.medalCalls)
			time.Sleep(1500 * time.Millisecond)
			So(atomic.LoadInt32(&f.medalCalls), ShouldEqual, before)
		})
	})

	Convey("Given a malformed refresh spec", t, func() {
		svc := newService(&fakeFeed{}, &clock{now: time.Now()}, service.WithRefreshSpec("every now and then"))
		err := svc.Start(context.Background())
		So(errors.Is(err, service.ErrInvalidRefreshSpec), ShouldBeTrue)
		So(svc.GetStats()["started"], ShouldEqual, false)
	})
}

func TestFromConfig(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := config.New()

		Convey("Then a service can be built from it", func() {
			svc, err := service.FromConfig(cfg, logger.Nop(), service.WithInitialRefresh(false))
			So(err, ShouldBeNil)
			So(svc.Location().String(), ShouldEqual, "Europe/Rome")
			So(svc.ScheduleWindow(), ShouldResemble, schedule.Window{Start: "2026-02-04", End: "2026-02-22"})
		})

		Convey("Then an unknown zone is rejected", func() {
			cfg.TimeZone = "Mars/Olympus"
			_, err := service.FromConfig(cfg, logger.Nop())
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("Then an inverted window is rejected", func() {
			cfg.GamesStart, cfg.GamesEnd = "2026-02-22", "2026-02-06"
			_, err := service.FromConfig(cfg, logger.Nop())
			So(errors.Is(err, schedule.ErrInvalidWindow), ShouldBeTrue)
		})
	})
}
