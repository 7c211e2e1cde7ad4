package feed

import (
	"net/http"
	"strings"
	"time"

	"github.com/okian/medalboard/pkg/logger"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the feed host, e.g. https://www.olympics.com.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithLanguage sets the feed language code (FRA, ENG...).
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.lang = lang
		}
	}
}

// WithTimeout bounds each request, including reading the body. A client
// given through WithHTTPClient is copied, never changed in place.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
