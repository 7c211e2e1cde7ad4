package service

import (
	"fmt"

	"github.com/okian/medalboard/internal/adapters/feed"
	"github.com/okian/medalboard/internal/config"
	"github.com/okian/medalboard/internal/domain/schedule"
	"github.com/okian/medalboard/pkg/logger"
)

// FromConfig builds a Service against the configured feed.
func FromConfig(cfg *config.Config, l logger.Logger, extra ...Option) (*Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	days, err := schedule.NewWindow(cfg.ScheduleStart, cfg.ScheduleEnd)
	if err != nil {
		return nil, fmt.Errorf("schedule window: %w", err)
	}
	games, err := schedule.NewWindow(cfg.GamesStart, cfg.GamesEnd)
	if err != nil {
		return nil, fmt.Errorf("games window: %w", err)
	}

	client := feed.New(
		feed.WithBaseURL(cfg.BaseURL),
		feed.WithLanguage(cfg.Lang),
		feed.WithTimeout(cfg.HTTPTimeout()),
		feed.WithLogger(l.Named("feed")),
	)

	opts := []Option{
		WithLogger(l),
		WithFeed(client),
		WithCacheTTL(cfg.CacheTTL()),
		WithLocation(loc),
		WithScheduleWindow(days),
		WithGamesWindow(games),
		WithRefreshSpec(cfg.RefreshSpec),
	}
	return New(append(opts, extra...)...), nil
}
