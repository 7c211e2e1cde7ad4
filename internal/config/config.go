// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Date layout shared by the schedule window fields.
const dateLayout = "2006-01-02"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BaseURL is the upstream feed origin.
	BaseURL string `koanf:"base_url"`

	// Lang is the feed language code inserted into resource paths.
	Lang string `koanf:"lang"`

	// CacheTTLMS bounds how long a fetched feed is served from cache.
	CacheTTLMS int `koanf:"cache_ttl_ms"`

	// HTTPTimeoutMS is the upstream request timeout.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// RefreshSpec is a cron spec for the periodic medals/medallists refresh.
	RefreshSpec string `koanf:"refresh_spec"`

	// TimeZone is the IANA zone used to bucket schedule units into days.
	TimeZone string `koanf:"time_zone"`

	// ScheduleStart and ScheduleEnd bound the dates a schedule may be requested for.
	ScheduleStart string `koanf:"schedule_start"`
	ScheduleEnd   string `koanf:"schedule_end"`

	// GamesStart and GamesEnd bound the competition period itself.
	GamesStart string `koanf:"games_start"`
	GamesEnd   string `koanf:"games_end"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Addr:          ":9080",
		BaseURL:       "https://www.olympics.com",
		Lang:          "FRA",
		CacheTTLMS:    60_000,
		HTTPTimeoutMS: 15_000,
		RefreshSpec:   "@every 5m",
		TimeZone:      "Europe/Rome",
		ScheduleStart: "2026-02-04",
		ScheduleEnd:   "2026-02-22",
		GamesStart:    "2026-02-06",
		GamesEnd:      "2026-02-22",
	}
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMS) * time.Millisecond
}

// HTTPTimeout returns the upstream timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// Location loads the configured reference time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: time_zone %q: %v", ErrInvalidConfig, c.TimeZone, err)
	}
	return loc, nil
}

// Validate checks field consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Lang) == "" {
		return fmt.Errorf("%w: lang must not be empty", ErrInvalidConfig)
	}
	if c.CacheTTLMS < 0 {
		return fmt.Errorf("%w: cache_ttl_ms must not be negative", ErrInvalidConfig)
	}
	if c.HTTPTimeoutMS <= 0 {
		return fmt.Errorf("%w: http_timeout_ms must be positive", ErrInvalidConfig)
	}
	if _, err := cron.ParseStandard(c.RefreshSpec); err != nil {
		return fmt.Errorf("%w: refresh_spec %q: %v", ErrInvalidConfig, c.RefreshSpec, err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if err := checkRange("schedule", c.ScheduleStart, c.ScheduleEnd); err != nil {
		return err
	}
	return checkRange("games", c.GamesStart, c.GamesEnd)
}

func checkRange(name, start, end string) error {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return fmt.Errorf("%w: %s_start %q is not YYYY-MM-DD", ErrInvalidConfig, name, start)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return fmt.Errorf("%w: %s_end %q is not YYYY-MM-DD", ErrInvalidConfig, name, end)
	}
	if e.Before(s) {
		return fmt.Errorf("%w: %s_end is before %s_start", ErrInvalidConfig, name, name)
	}
	return nil
}
