// Package feed fetches the Games results resources over HTTP.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/medalboard/internal/domain/model"
	"github.com/okian/medalboard/pkg/logger"
	"github.com/okian/medalboard/pkg/metrics"
)

const (
	DefaultBaseURL  = "https://www.olympics.com"
	DefaultLanguage = "FRA"
	defaultTimeout  = 15 * time.Second
	defaultUA       = "medalboard/1.0"

	// Resource names, used as metric labels.
	ResourceMedals     = "medals"
	ResourceMedallists = "medallists"
	ResourceSchedule   = "schedule"
)

// Client fetches feed resources. It does not retry.
type Client struct {
	baseURL   string
	lang      string
	userAgent string
	http      *http.Client
	timeout   time.Duration
	log       logger.Logger
}

// New builds a client with defaults for the Milano Cortina feed.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		lang:      DefaultLanguage,
		userAgent: defaultUA,
		http:      &http.Client{Timeout: defaultTimeout},
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 && c.http.Timeout != c.timeout {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// MedalsPath is the standings resource path.
func (c *Client) MedalsPath() string {
	return fmt.Sprintf("/wmr-owg2026/competition/api/%s/medals", c.lang)
}

// MedallistsPath is the medallists resource path.
func (c *Client) MedallistsPath() string {
	return fmt.Sprintf("/wmr-owg2026/competition/api/%s/medallists", c.lang)
}

// SchedulePath is the lite daily schedule path for a YYYY-MM-DD date.
func (c *Client) SchedulePath(date string) string {
	return fmt.Sprintf("/wmr-owg2026/schedules/api/%s/schedule/lite/day/%s", c.lang, date)
}

// Fetch GETs path and returns the body once it is known to be well-formed JSON.
func (c *Client) Fetch(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &HTTPError{Path: path, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	if !json.Valid(body) {
		return nil, &DecodeError{Path: path}
	}
	return body, nil
}

func fetchInto[T any](ctx context.Context, c *Client, resource, path string) (T, error) {
	var out T
	start := time.Now()
	body, err := c.Fetch(ctx, path)
	if err == nil {
		if uerr := json.Unmarshal(body, &out); uerr != nil {
			err = &DecodeError{Path: path, Err: uerr}
		}
	}

	took := time.Since(start)
	metrics.RecordFeedFetch(resource, Kind(err), took)
	if err != nil {
		metrics.RecordErrorByComponent("feed", Kind(err))
		c.log.Warn(ctx, "feed fetch failed",
			logger.String("resource", resource),
			logger.String("path", path),
			logger.Duration("took", took),
			logger.Error(err),
		)
		var zero T
		return zero, err
	}
	c.log.Debug(ctx, "feed fetched",
		logger.String("resource", resource),
		logger.Int("bytes", len(body)),
		logger.Duration("took", took),
	)
	return out, nil
}

// Medals fetches the medal standings.
func (c *Client) Medals(ctx context.Context) (model.StandingsFeed, error) {
	return fetchInto[model.StandingsFeed](ctx, c, ResourceMedals, c.MedalsPath())
}

// Medallists fetches every medallist.
func (c *Client) Medallists(ctx context.Context) (model.MedallistsFeed, error) {
	return fetchInto[model.MedallistsFeed](ctx, c, ResourceMedallists, c.MedallistsPath())
}

// DailySchedule fetches the units of one civil day.
func (c *Client) DailySchedule(ctx context.Context, date string) (model.Schedule, error) {
	return fetchInto[model.Schedule](ctx, c, ResourceSchedule, c.SchedulePath(date))
}
