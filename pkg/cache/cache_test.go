package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	redisclient "github.com/grocerease/grocerease-backend/pkg/redis"
)

type payload struct {
	Categories []string `json:"categories"`
}

type countingRecorder struct{ hits, misses, errs int }

func (c *countingRecorder) Hit(string)   { c.hits++ }
func (c *countingRecorder) Miss(string)  { c.misses++ }
func (c *countingRecorder) Error(string) { c.errs++ }

func TestMemoryExpiresEntries(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := &countingRecorder{}
	c := NewMemory(WithClock(func() time.Time { return now }), WithMemoryRecorder(rec))
	ctx := context.Background()

	if err := c.Set(ctx, "filters", payload{Categories: []string{"dairy"}}, 5*time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	ok, err := c.Get(ctx, "filters", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "dairy" {
		t.Fatalf("unexpected payload %+v", got)
	}

	now = now.Add(5 * time.Minute)
	ok, err = c.Get(ctx, "filters", &got)
	if err != nil || ok {
		t.Fatalf("expected expiry at ttl boundary, ok=%v err=%v", ok, err)
	}
	if rec.hits != 1 || rec.misses != 1 {
		t.Fatalf("unexpected recorder counts %+v", rec)
	}
}

func TestMemoryDelete(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	_ = c.Set(ctx, "k", 1, 0)
	_ = c.Delete(ctx, "k")
	var v int
	if ok, _ := c.Get(ctx, "k", &v); ok {
		t.Fatalf("expected deleted key to miss")
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = raw.Close() })

	rec := &countingRecorder{}
	c := NewRedis(redisclient.NewFromClient(raw), rec)
	ctx := context.Background()

	var got payload
	if ok, err := c.Get(ctx, "filters", &got); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, "filters", payload{Categories: []string{"produce"}}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ok, err := c.Get(ctx, "filters", &got); err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.Categories[0] != "produce" {
		t.Fatalf("unexpected payload %+v", got)
	}

	srv.FastForward(2 * time.Minute)
	if ok, _ := c.Get(ctx, "filters", &got); ok {
		t.Fatalf("expected ttl expiry")
	}
	if rec.hits != 1 || rec.misses != 2 {
		t.Fatalf("unexpected recorder counts %+v", rec)
	}
}

func TestGetOrLoad(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (payload, error) {
		calls++
		return payload{Categories: []string{"bakery"}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrLoad(ctx, c, "filters", time.Minute, load)
		if err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
		if got.Categories[0] != "bakery" {
			t.Fatalf("unexpected payload %+v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected loader to run once, ran %d times", calls)
	}

	boom := errors.New("boom")
	if _, err := GetOrLoad(ctx, c, "other", time.Minute, func(context.Context) (payload, error) { return payload{}, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if _, err := GetOrLoad[payload](ctx, nil, "nil-cache", time.Minute, load); err != nil {
		t.Fatalf("nil cache should load directly: %v", err)
	}
}
