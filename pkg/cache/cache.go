// Package cache stores JSON-encoded values with a TTL, in process or in Redis.
package cache

import (
	"context"
	"time"
)

// Cache is the read-through store used for slow-changing lookups.
type Cache interface {
	// Get decodes the value at key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Recorder receives hit/miss notifications; *metrics.CacheMetrics satisfies it.
type Recorder interface {
	Hit(backend string)
	Miss(backend string)
	Error(backend string)
}

type nopRecorder struct{}

func (nopRecorder) Hit(string)   {}
func (nopRecorder) Miss(string)  {}
func (nopRecorder) Error(string) {}

// GetOrLoad returns the cached value at key, or calls load and caches its result.
// Cache failures fall through to load.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if c != nil {
		if ok, err := c.Get(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	fresh, err := load(ctx)
	if err != nil {
		return fresh, err
	}
	if c != nil {
		_ = c.Set(ctx, key, fresh, ttl)
	}
	return fresh, nil
}
