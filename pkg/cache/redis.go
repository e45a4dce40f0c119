package cache

import (
	"context"
	"encoding/json"
	"time"

	redisclient "github.com/grocerease/grocerease-backend/pkg/redis"
)

const redisBackend = "redis"

// Redis shares cached values across API instances.
type Redis struct {
	client   *redisclient.Client
	recorder Recorder
}

func NewRedis(client *redisclient.Client, recorder Recorder) *Redis {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Redis{client: client, recorder: recorder}
}

func (r *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := r.client.Get(ctx, r.client.CacheKey(key))
	if redisclient.IsNil(err) {
		r.recorder.Miss(redisBackend)
		return false, nil
	}
	if err != nil {
		r.recorder.Error(redisBackend)
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		r.recorder.Error(redisBackend)
		return false, err
	}
	r.recorder.Hit(redisBackend)
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.client.CacheKey(key), payload, ttl)
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.CacheKey(key))
}
