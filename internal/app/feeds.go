package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/medalboard/internal/adapters/cache"
	"github.com/okian/medalboard/internal/adapters/feed"
	"github.com/okian/medalboard/internal/domain/model"
	"github.com/okian/medalboard/internal/domain/schedule"
	"github.com/okian/medalboard/pkg/logger"
	"github.com/okian/medalboard/pkg/metrics"
)

// Medals returns the medal standings, from cache when fresh.
func (s *Service) Medals(ctx context.Context, force bool) (model.StandingsFeed, error) {
	return cache.Get(ctx, s.cache, cache.KeyMedals, s.ttl, tracked(s, s.feed.Medals), force)
}

// Medallists returns every medallist, from cache when fresh.
func (s *Service) Medallists(ctx context.Context, force bool) (model.MedallistsFeed, error) {
	return cache.Get(ctx, s.cache, cache.KeyMedallists, s.ttl, tracked(s, s.feed.Medallists), force)
}

// DailySchedule returns the units of one civil day, from cache when fresh.
// The date must be YYYY-MM-DD and inside the schedule window.
func (s *Service) DailySchedule(ctx context.Context, date string, force bool) (model.Schedule, error) {
	if err := s.CheckDate(date); err != nil {
		return model.Schedule{}, err
	}
	load := func(ctx context.Context) (model.Schedule, error) {
		return s.feed.DailySchedule(ctx, date)
	}
	return cache.Get(ctx, s.cache, cache.ScheduleKey(date), s.ttl, tracked(s, load), force)
}

// CheckDate validates a schedule date against the format and the window.
func (s *Service) CheckDate(date string) error {
	if _, err := schedule.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if !s.scheduleWindow.Contains(date) {
		return fmt.Errorf("%w: %s not in %s..%s", ErrDateOutOfRange, date, s.scheduleWindow.Start, s.scheduleWindow.End)
	}
	return nil
}

// tracked advances the last-update marker after every successful load.
func tracked[T any](s *Service, load func(context.Context) (T, error)) cache.Loader[T] {
	return func(ctx context.Context) (T, error) {
		v, err := load(ctx)
		if err == nil {
			s.touch(s.now())
		}
		return v, err
	}
}

func (s *Service) touch(t time.Time) {
	s.updMu.Lock()
	if t.After(s.lastUpdate) {
		s.lastUpdate = t
		metrics.UpdateLastUpdate(t)
	}
	s.updMu.Unlock()
}

// LastUpdate is the time of the latest successful feed load, if any.
func (s *Service) LastUpdate() (time.Time, bool) {
	s.updMu.Lock()
	defer s.updMu.Unlock()
	return s.lastUpdate, !s.lastUpdate.IsZero()
}

// LastUpdateISO renders LastUpdate as RFC 3339 UTC, or nil when nothing
// has loaded yet.
func (s *Service) LastUpdateISO() *string {
	t, ok := s.LastUpdate()
	if !ok {
		return nil
	}
	iso := t.UTC().Format(time.RFC3339Nano)
	return &iso
}

// Result is the value or the error of one feed in a refresh.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the feed loaded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Outcome is the report of one RefreshAll run.
type Outcome struct {
	RunID      string
	Medals     Result[model.StandingsFeed]
	Medallists Result[model.MedallistsFeed]
	LastUpdate *string
	Took       time.Duration
}

// Success reports whether every feed loaded.
func (o Outcome) Success() bool { return o.Medals.OK() && o.Medallists.OK() }

// RefreshAll force-reloads the standings and the medallists concurrently.
// One feed failing does not affect the other. It never returns an error;
// failures are logged and carried in the outcome.
func (s *Service) RefreshAll(ctx context.Context) Outcome {
	start := time.Now()
	out := Outcome{RunID: uuid.NewString()}
	log := s.logger.Named("refresh")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		v, err := s.Medals(ctx, true)
		out.Medals = Result[model.StandingsFeed]{Value: v, Err: err}
	}()
	go func() {
		defer wg.Done()
		v, err := s.Medallists(ctx, true)
		out.Medallists = Result[model.MedallistsFeed]{Value: v, Err: err}
	}()
	wg.Wait()

	for resource, err := range map[string]error{
		feed.ResourceMedals:     out.Medals.Err,
		feed.ResourceMedallists: out.Medallists.Err,
	} {
		if err == nil {
			continue
		}
		metrics.RecordRefreshFailure(resource)
		log.Error(ctx, "refresh failed",
			logger.String("runID", out.RunID),
			logger.String("resource", resource),
			logger.String("kind", feed.Kind(err)),
			logger.Error(err),
		)
	}

	out.LastUpdate = s.LastUpdateISO()
	out.Took = time.Since(start)
	metrics.RecordRefresh(out.Took)

	s.runMu.Lock()
	s.runs++
	s.lastRun = out
	s.hasRun = true
	s.runMu.Unlock()

	log.Info(ctx, "refresh completed",
		logger.String("runID", out.RunID),
		logger.Bool("medals", out.Medals.OK()),
		logger.Bool("medallists", out.Medallists.OK()),
		logger.Duration("took", out.Took),
	)
	return out
}
