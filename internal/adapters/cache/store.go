// Package cache keeps the most recent successful fetch of each feed resource
// for a bounded time.
package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/medalboard/pkg/logger"
	"github.com/okian/medalboard/pkg/metrics"
)

// Loader produces a fresh value for a key.
type Loader[T any] func(ctx context.Context) (T, error)

// Entry is a committed value and the time it was fetched.
type Entry struct {
	Payload   any
	FetchedAt time.Time
	Seq       uint64
}

type slot struct {
	entry    Entry
	filled   bool
	issued   uint64    // last sequence handed to a loader
	failedAt time.Time // last failed reload of a filled entry, zero once a load succeeds
}

// Store is a per-key TTL cache. Entries are created lazily, replaced
// wholesale on a successful load and never evicted. The lock is never held
// while a loader runs.
type Store struct {
	mu    sync.Mutex
	slots map[string]*slot
	now   func() time.Time
	log   logger.Logger
}

// New constructs an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		slots: make(map[string]*slot),
		now:   time.Now,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached value for key when it is younger than ttl and force
// is false. Otherwise it runs load. A successful load replaces the entry
// unless a load started later has already committed; the caller still gets
// its own value in that case. A failed load leaves the entry as it was and
// returns the loader's error unchanged. Until a later load succeeds,
// unforced reads within ttl of that failure get the preserved entry instead
// of hitting the loader again. A payload of another type than T is treated
// as missing.
func Get[T any](ctx context.Context, s *Store, key string, ttl time.Duration, load Loader[T], force bool) (T, error) {
	var zero T
	if load == nil {
		return zero, ErrNilLoader
	}
	resource := Resource(key)

	s.mu.Lock()
	sl := s.slotLocked(key)
	if !force && sl.filled {
		now := s.now()
		fresh := now.Sub(sl.entry.FetchedAt) < ttl
		held := !sl.failedAt.IsZero() && now.Sub(sl.failedAt) < ttl
		if v, ok := sl.entry.Payload.(T); ok && (fresh || held) {
			s.mu.Unlock()
			metrics.RecordCacheHit(resource)
			if !fresh {
				s.log.Debug(ctx, "serving preserved entry after failed reload",
					logger.String("key", key),
				)
			}
			return v, nil
		}
	}
	sl.issued++
	seq := sl.issued
	s.mu.Unlock()

	metrics.RecordCacheMiss(resource)
	v, err := load(ctx)
	if err != nil {
		s.mu.Lock()
		if sl.filled && seq > sl.entry.Seq {
			sl.failedAt = s.now()
		}
		s.mu.Unlock()
		metrics.RecordCacheLoadError(resource)
		s.log.Debug(ctx, "cache load failed",
			logger.String("key", key),
			logger.Bool("forced", force),
			logger.Error(err),
		)
		return zero, err
	}

	s.mu.Lock()
	committed := !sl.filled || seq > sl.entry.Seq
	if committed {
		sl.entry = Entry{Payload: v, FetchedAt: s.now(), Seq: seq}
		sl.filled = true
		sl.failedAt = time.Time{}
	}
	n := s.countLocked()
	s.mu.Unlock()

	metrics.UpdateCacheEntries(n)
	if !committed {
		metrics.RecordCacheStaleCompletion(resource)
		s.log.Debug(ctx, "discarded stale cache completion",
			logger.String("key", key),
			logger.Int("seq", int(seq)),
		)
	}
	return v, nil
}

func (s *Store) slotLocked(key string) *slot {
	sl, ok := s.slots[key]
	if !ok {
		sl = &slot{}
		s.slots[key] = sl
	}
	return sl
}

func (s *Store) countLocked() int {
	n := 0
	for _, sl := range s.slots {
		if sl.filled {
			n++
		}
	}
	return n
}

// Peek returns the committed entry for key without loading.
func (s *Store) Peek(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[key]
	if !ok || !sl.filled {
		return Entry{}, false
	}
	return sl.entry, true
}

// Keys lists the keys holding a committed entry, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.slots))
	for k, sl := range s.slots {
		if sl.filled {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Len is the number of committed entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

// Resource maps a key to its metric label: "schedule:2026-02-11" -> "schedule".
func Resource(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

// ScheduleKey is the cache key of one day's schedule.
func ScheduleKey(date string) string { return "schedule:" + date }

// Fixed keys.
const (
	KeyMedals     = "medals"
	KeyMedallists = "medallists"
)
