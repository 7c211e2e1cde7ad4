package cache

import (
	"time"

	"github.com/okian/medalboard/pkg/logger"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}
