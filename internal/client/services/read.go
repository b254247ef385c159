package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/lingua/internal/client/cache"
	"github.com/dmitrijs2005/lingua/internal/client/client"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

// reader is the shared read path: cache when available, silent fallback to
// the zero value on failure.
type reader struct {
	cache  *cache.Cache
	logger logging.Logger
}

func newReader(c *cache.Cache, l logging.Logger) reader {
	if l == nil {
		l = logging.Nop()
	}
	return reader{cache: c, logger: l}
}

// read loads key through the cache (ttl <= 0 means the cache default). With
// an empty key or no cache it calls load directly. The returned error is the
// backend error, already logged; the value is T's zero value in that case.
func read[T any](ctx context.Context, r reader, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var loadErr error
	loader := func(ctx context.Context) (T, error) {
		v, err := load(ctx)
		loadErr = err
		return v, err
	}

	var (
		v   T
		err error
	)
	if r.cache == nil || key == "" {
		v, err = loader(ctx)
	} else {
		var res cache.Result[T]
		res, err = cache.Fetch(ctx, r.cache, key, ttl, loader)
		v = res.Value
		if err == nil && res.Stale && errors.Is(loadErr, client.ErrUnauthorized) {
			// A stale copy must not outlive the session.
			err = loadErr
		}
	}
	if err == nil {
		return v, nil
	}

	if errors.Is(err, client.ErrUnauthorized) {
		r.logger.Debug(ctx, "not authorized, returning empty result", "key", key)
	} else {
		r.logger.Warn(ctx, "backend read failed, returning empty result", "key", key, "error", err)
	}
	var zero T
	return zero, err
}

// invalidate drops cache keys by prefix, logging failures.
func (r reader) invalidate(ctx context.Context, prefixes ...string) {
	if r.cache == nil {
		return
	}
	for _, p := range prefixes {
		if err := r.cache.DeletePrefix(ctx, p); err != nil {
			r.logger.Warn(ctx, "cache invalidation failed", "prefix", p, "error", err)
		}
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
