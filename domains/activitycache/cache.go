// Package activitycache stores the last fetched activity snapshot per
// repository. Entries older than the staleness window read as a miss.
package activitycache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomantics/contribsync/pkg/metrics"
	"go.uber.org/zap"
)

// DefaultStaleAfter is the staleness window.
const DefaultStaleAfter = 30 * time.Minute

// ErrNoEntry is returned by a Store when no row exists for a key.
var ErrNoEntry = errors.New("no cache entry")

// Entry is one cached snapshot.
type Entry struct {
	Key       string
	Payload   []byte
	UpdatedAt time.Time
}

// Store is the persistence behind the cache. Save must upsert by key.
type Store interface {
	Load(ctx context.Context, key string) (Entry, error)
	Save(ctx context.Context, e Entry) error
}

type Cache struct {
	l          *zap.Logger
	store      Store
	staleAfter time.Duration
	now        func() time.Time
}

// New creates a cache over store. A non-positive staleAfter means DefaultStaleAfter.
func New(l *zap.Logger, store Store, staleAfter time.Duration) *Cache {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Cache{
		l:          l.Named("activitycache"),
		store:      store,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// WithClock replaces the time source.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Get returns the fresh entry for key. A missing or stale row is a miss
// (ok == false, err == nil); a store failure is returned as an error.
func (c *Cache) Get(ctx context.Context, key string) (Entry, bool, error) {
	e, err := c.store.Load(ctx, key)
	if errors.Is(err, ErrNoEntry) {
		metrics.RecordCacheMiss(false)
		return Entry{}, false, nil
	}
	if err != nil {
		metrics.RecordCacheError("get")
		return Entry{}, false, fmt.Errorf("load activity cache %s: %w", key, err)
	}

	if c.now().Sub(e.UpdatedAt) >= c.staleAfter {
		metrics.RecordCacheMiss(true)
		return Entry{}, false, nil
	}

	metrics.RecordCacheHit()
	return e, true, nil
}

// Set upserts the snapshot for key. Failures are logged with their cause and
// returned so the caller can report them.
func (c *Cache) Set(ctx context.Context, key string, payload []byte) error {
	e := Entry{Key: key, Payload: payload, UpdatedAt: c.now()}
	if err := c.store.Save(ctx, e); err != nil {
		metrics.RecordCacheError("set")
		c.l.Warn("activity cache write failed",
			zap.String("repo", key),
			zap.Error(err),
		)
		return fmt.Errorf("save activity cache %s: %w", key, err)
	}
	return nil
}
