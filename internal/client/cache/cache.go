// Package cache implements the client's TTL cache over the local SQLite store.
//
// Values are JSON payloads. An entry is fresh while now - stored_at < ttl.
// Get evicts entries it finds expired. Fetch keeps expired entries around as
// a fallback for when the loader fails, so listings keep working offline.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/lingua/internal/client/metrics"
	"github.com/dmitrijs2005/lingua/internal/client/models"
	cacherepo "github.com/dmitrijs2005/lingua/internal/client/repositories/cache"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

const DefaultTTL = 5 * time.Minute

type Cache struct {
	repo    cacherepo.Repository
	ttl     time.Duration
	now     func() time.Time
	logger  logging.Logger
	metrics *metrics.Collector
	group   singleflight.Group
}

type Option func(*Cache)

// WithTTL sets the TTL used when a caller passes ttl <= 0.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(c *Cache) { c.metrics = m }
}

func New(repo cacherepo.Repository, opts ...Option) *Cache {
	c := &Cache{
		repo:   repo,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the stored bytes when the entry is fresh. An expired entry is
// deleted and reported as absent.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, err := c.repo.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if e == nil {
		c.metrics.RecordCacheLookup(metrics.CacheMiss)
		return nil, false, nil
	}
	if !e.Fresh(c.now()) {
		c.metrics.RecordCacheLookup(metrics.CacheMiss)
		if err := c.repo.Delete(ctx, key); err != nil {
			c.logger.Warn(ctx, "failed to evict expired cache entry", "key", key, "error", err)
		}
		return nil, false, nil
	}
	c.metrics.RecordCacheLookup(metrics.CacheHit)
	return e.Value, true, nil
}

// Set stores value under key. ttl <= 0 selects the cache's default TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.repo.Upsert(ctx, &models.CacheEntry{
		Key:      key,
		Value:    value,
		StoredAt: c.now(),
		TTL:      ttl,
	})
}

// Keys lists every stored key, fresh or expired.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	return c.repo.Keys(ctx)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.repo.Delete(ctx, key)
}

// DeletePrefix invalidates a family of keys such as "achievements:".
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	return c.repo.DeletePrefix(ctx, prefix)
}

func (c *Cache) Clear(ctx context.Context) error {
	n, err := c.repo.Clear(ctx)
	if err != nil {
		return err
	}
	c.logger.Debug(ctx, "cache cleared", "entries", n)
	return nil
}

// Result is what Fetch hands back. Stale is set when the value came from an
// expired entry because the loader failed.
type Result[T any] struct {
	Value T
	Stale bool
}

// Fetch serves key from the cache while fresh, otherwise calls loader and
// stores its result. Concurrent fetches of one key share a single loader
// call. When the loader fails and any entry exists, fresh or not, that entry
// is returned with Stale set.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, loader func(context.Context) (T, error)) (Result[T], error) {
	var zero Result[T]

	e, err := c.repo.Get(ctx, key)
	if err != nil {
		c.logger.Warn(ctx, "cache read failed, loading", "key", key, "error", err)
		e = nil
	}

	if e != nil && e.Fresh(c.now()) {
		var v T
		if err := json.Unmarshal(e.Value, &v); err == nil {
			c.metrics.RecordCacheLookup(metrics.CacheHit)
			return Result[T]{Value: v}, nil
		}
		c.logger.Warn(ctx, "discarding undecodable cache entry", "key", key)
		e = nil
	}

	raw, err, _ := c.group.Do(key, func() (any, error) {
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode cache entry[%s]: %w", key, err)
		}
		if err := c.Set(ctx, key, b, ttl); err != nil {
			c.logger.Warn(ctx, "failed to store cache entry", "key", key, "error", err)
		}
		return b, nil
	})
	if err != nil {
		if e != nil {
			var v T
			if derr := json.Unmarshal(e.Value, &v); derr == nil {
				c.metrics.RecordCacheLookup(metrics.CacheStale)
				c.logger.Warn(ctx, "serving stale cache entry", "key", key, "age", c.now().Sub(e.StoredAt), "error", err)
				return Result[T]{Value: v, Stale: true}, nil
			}
		}
		return zero, err
	}

	c.metrics.RecordCacheLookup(metrics.CacheMiss)
	var v T
	if err := json.Unmarshal(raw.([]byte), &v); err != nil {
		return zero, fmt.Errorf("decode cache entry[%s]: %w", key, err)
	}
	return Result[T]{Value: v}, nil
}
