// Package ratelimit throttles requests per key, in process or across instances via Redis.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Recorder receives decisions; *metrics.LimiterMetrics satisfies it.
type Recorder interface {
	Record(scope string, allowed bool)
}

type nopRecorder struct{}

func (nopRecorder) Record(string, bool) {}
