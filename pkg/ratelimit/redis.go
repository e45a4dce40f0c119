package ratelimit

import (
	"context"
	"time"

	redisclient "github.com/grocerease/grocerease-backend/pkg/redis"
)

// Redis is a fixed-window limiter shared by every API instance.
type Redis struct {
	client   *redisclient.Client
	scope    string
	limit    int
	window   time.Duration
	recorder Recorder
}

func NewRedis(client *redisclient.Client, scope string, limit int, window time.Duration, recorder Recorder) *Redis {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Redis{client: client, scope: scope, limit: limit, window: window, recorder: recorder}
}

func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	allowed, count, err := r.client.FixedWindowAllow(ctx, r.scope+":"+key, int64(r.limit), r.window)
	if err != nil {
		return Decision{}, err
	}
	r.recorder.Record(r.scope, allowed)

	d := Decision{Allowed: allowed, Limit: r.limit}
	if allowed {
		d.Remaining = r.limit - int(count)
	} else {
		d.RetryAfter = r.window
	}
	return d, nil
}
