package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return NewFromClient(raw), srv
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	client, srv := newTestClient(t)

	allowed, count, err := client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 1 {
		t.Fatalf("expected first request allowed with count 1, got allowed=%v count=%d", allowed, count)
	}
	if ttl := srv.TTL(client.RateLimitKey("test-scope")); ttl <= 0 {
		t.Fatalf("expected ttl on first increment, got %v", ttl)
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}

	srv.FastForward(2 * time.Second)
	allowed, count, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 1 {
		t.Fatalf("expected window reset, got allowed=%v count=%d", allowed, count)
	}
}

func TestGetSetDel(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	if _, err := client.Get(ctx, "missing"); !IsNil(err) {
		t.Fatalf("expected redis.Nil for missing key, got %v", err)
	}
	if err := client.Set(ctx, client.CacheKey("k"), "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := client.Get(ctx, client.CacheKey("k"))
	if err != nil || got != "v" {
		t.Fatalf("expected v, got %q err=%v", got, err)
	}
	ok, err := client.Exists(ctx, client.CacheKey("k"))
	if err != nil || !ok {
		t.Fatalf("expected key to exist")
	}
	if err := client.Del(ctx, client.CacheKey("k")); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, _ = client.Exists(ctx, client.CacheKey("k"))
	if ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestSetNX(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	key := client.IdempotencyKey("lists", "abc")

	first, err := client.SetNX(ctx, key, "1", time.Minute)
	if err != nil || !first {
		t.Fatalf("expected first SetNX to win, got %v err=%v", first, err)
	}
	second, err := client.SetNX(ctx, key, "2", time.Minute)
	if err != nil || second {
		t.Fatalf("expected second SetNX to lose, got %v err=%v", second, err)
	}
}

func TestKeyBuilders(t *testing.T) {
	c := &Client{}
	if got := c.RateLimitKey("search:1.2.3.4"); got != "ge:rate_limit:search:1.2.3.4" {
		t.Fatalf("unexpected rate limit key %q", got)
	}
	if got := c.IdempotencyKey(" reports ", ""); got != "ge:idempotency:reports" {
		t.Fatalf("unexpected idempotency key %q", got)
	}
	if got := c.RevokedTokenKey("jti-1"); got != "ge:revoked:jti-1" {
		t.Fatalf("unexpected revoked key %q", got)
	}
}
