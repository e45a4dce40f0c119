package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindow keeps per-key request timestamps in memory and allows at most
// limit requests in any trailing window. A limit below one denies everything.
type SlidingWindow struct {
	scope    string
	limit    int
	window   time.Duration
	now      func() time.Time
	recorder Recorder

	mu   sync.Mutex
	hits map[string][]time.Time
}

type Option func(*SlidingWindow)

func WithClock(now func() time.Time) Option {
	return func(s *SlidingWindow) { s.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(s *SlidingWindow) {
		if r != nil {
			s.recorder = r
		}
	}
}

func NewSlidingWindow(scope string, limit int, window time.Duration, opts ...Option) *SlidingWindow {
	s := &SlidingWindow{
		scope:    scope,
		limit:    limit,
		window:   window,
		now:      time.Now,
		recorder: nopRecorder{},
		hits:     map[string][]time.Time{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SlidingWindow) Allow(_ context.Context, key string) (Decision, error) {
	now := s.now()
	cutoff := now.Add(-s.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.hits[key][:0]
	for _, ts := range s.hits[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= s.limit {
		s.hits[key] = recent
		s.recorder.Record(s.scope, false)
		retryAfter := s.window
		if len(recent) > 0 {
			retryAfter = recent[0].Add(s.window).Sub(now)
		}
		return Decision{
			Allowed:    false,
			Limit:      s.limit,
			RetryAfter: retryAfter,
		}, nil
	}

	recent = append(recent, now)
	s.hits[key] = recent
	s.recorder.Record(s.scope, true)
	return Decision{
		Allowed:   true,
		Limit:     s.limit,
		Remaining: s.limit - len(recent),
	}, nil
}

// Prune drops keys with no hits inside the window.
func (s *SlidingWindow) Prune() {
	cutoff := s.now().Add(-s.window)
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, hits := range s.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(s.hits, key)
		}
	}
}
