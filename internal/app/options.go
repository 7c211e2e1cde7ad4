package service

import (
	"time"

	"github.com/okian/medalboard/internal/adapters/cache"
	"github.com/okian/medalboard/internal/domain/schedule"
	"github.com/okian/medalboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFeed sets the upstream feed.
func WithFeed(f Feed) Option {
	return func(s *Service) {
		if f != nil {
			s.feed = f
		}
	}
}

// WithCache shares an existing cache store.
func WithCache(c *cache.Store) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithCacheTTL sets how long a fetched resource is served without reloading.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithLocation sets the zone used to bucket schedule days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithScheduleWindow bounds the dates a daily schedule may be requested for.
func WithScheduleWindow(w schedule.Window) Option {
	return func(s *Service) {
		if w.Start != "" && w.End != "" {
			s.scheduleWindow = w
		}
	}
}

// WithGamesWindow sets the competition dates used for Period.
func WithGamesWindow(w schedule.Window) Option {
	return func(s *Service) {
		if w.Start != "" && w.End != "" {
			s.gamesWindow = w
		}
	}
}

// WithRefreshSpec sets the cron spec of the periodic refresh.
func WithRefreshSpec(spec string) Option {
	return func(s *Service) {
		if spec != "" {
			s.refreshSpec = spec
		}
	}
}

// WithInitialRefresh controls whether Start refreshes immediately.
func WithInitialRefresh(enabled bool) Option {
	return func(s *Service) {
		s.initialRefresh = enabled
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
