// Package service owns the cached feeds and the last-update marker and
// serves them to the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/medalboard/internal/adapters/cache"
	"github.com/okian/medalboard/internal/adapters/feed"
	"github.com/okian/medalboard/internal/domain/model"
	"github.com/okian/medalboard/internal/domain/schedule"
	"github.com/okian/medalboard/pkg/logger"
	"github.com/okian/medalboard/pkg/metrics"
)

// Feed fetches the upstream resources.
type Feed interface {
	Medals(ctx context.Context) (model.StandingsFeed, error)
	Medallists(ctx context.Context) (model.MedallistsFeed, error)
	DailySchedule(ctx context.Context, date string) (model.Schedule, error)
}

const (
	defaultTTL         = 60 * time.Second
	defaultRefreshSpec = "@every 5m"
)

// Service serves the medal standings, medallists and daily schedules
// through a shared TTL cache, and refreshes them periodically.
type Service struct {
	mu sync.RWMutex

	feed  Feed
	cache *cache.Store

	ttl            time.Duration
	loc            *time.Location
	scheduleWindow schedule.Window
	gamesWindow    schedule.Window
	refreshSpec    string
	initialRefresh bool
	now            func() time.Time

	// last-update marker
	updMu      sync.Mutex
	lastUpdate time.Time

	// refresh bookkeeping
	runMu   sync.Mutex
	runs    int
	lastRun Outcome
	hasRun  bool

	// State
	started bool
	cron    *cron.Cron
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	logger logger.Logger
}

// New constructs a Service. Without WithFeed it talks to the public feed.
func New(opts ...Option) *Service {
	s := &Service{
		ttl:            defaultTTL,
		scheduleWindow: schedule.Window{Start: "2026-02-04", End: "2026-02-22"},
		gamesWindow:    schedule.Window{Start: "2026-02-06", End: "2026-02-22"},
		refreshSpec:    defaultRefreshSpec,
		initialRefresh: true,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.loc == nil {
		loc, err := time.LoadLocation("Europe/Rome")
		if err != nil {
			loc = time.UTC
		}
		s.loc = loc
	}
	if s.feed == nil {
		s.feed = feed.New(feed.WithLogger(s.logger.Named("feed")))
	}
	if s.cache == nil {
		s.cache = cache.New(cache.WithClock(s.now), cache.WithLogger(s.logger.Named("cache")))
	}
	return s
}

// Start schedules the periodic refresh and, unless disabled, runs one
// refresh right away.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting medalboard service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cl := cronLogger{ctx: runCtx, l: s.logger.Named("cron")}
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(s.refreshSpec, func() { s.Trigger(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("%w %q: %w", ErrInvalidRefreshSpec, s.refreshSpec, err)
	}
	c.Start()

	s.cron = c
	s.cancel = cancel
	s.started = true

	if s.initialRefresh {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.Trigger(runCtx)
		}()
	}

	s.logger.Info(ctx, "medalboard service started",
		logger.String("refresh", s.refreshSpec),
		logger.Duration("cacheTTL", s.ttl),
		logger.String("zone", s.loc.String()),
	)
	return nil
}

// Stop cancels the periodic refresh and waits for a running one to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping medalboard service...")

	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()

	s.cron = nil
	s.started = false
	s.logger.Info(context.Background(), "medalboard service stopped")
}

// Trigger runs one refresh tick.
func (s *Service) Trigger(ctx context.Context) Outcome {
	return s.RefreshAll(ctx)
}

// Location is the reference zone for civil dates.
func (s *Service) Location() *time.Location { return s.loc }

// ScheduleWindow is the range of dates with a daily schedule.
func (s *Service) ScheduleWindow() schedule.Window { return s.scheduleWindow }

// Today is the current civil date in the reference zone, clamped to the
// schedule window.
func (s *Service) Today() string {
	return s.scheduleWindow.Today(s.now(), s.loc)
}

// Period locates now relative to the Games.
func (s *Service) Period() schedule.Phase {
	return s.gamesWindow.Period(s.now(), s.loc)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      started,
		"cacheTTL":     s.ttl.String(),
		"refreshSpec":  s.refreshSpec,
		"zone":         s.loc.String(),
		"cacheEntries": s.cache.Len(),
		"cacheKeys":    s.cache.Keys(),
		"lastUpdate":   s.LastUpdateISO(),
		"period":       string(s.Period()),
	}

	s.runMu.Lock()
	stats["refreshRuns"] = s.runs
	if s.hasRun {
		stats["lastRunID"] = s.lastRun.RunID
		stats["lastRunTook"] = s.lastRun.Took.String()
	}
	s.runMu.Unlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	metrics.UpdateSystemMemoryUsage(ms.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	metrics.UpdateCacheEntries(s.cache.Len())

	return stats
}

// cronLogger routes scheduler messages to the service logger.
type cronLogger struct {
	ctx context.Context
	l   logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(c.ctx, msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(c.ctx, msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
