package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const memoryBackend = "memory"

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Memory is a process-local cache. Values are stored encoded so callers never
// share mutable state with the cache.
type Memory struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	now      func() time.Time
	recorder Recorder
}

type MemoryOption func(*Memory)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func WithMemoryRecorder(r Recorder) MemoryOption {
	return func(m *Memory) {
		if r != nil {
			m.recorder = r
		}
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries:  map[string]memoryEntry{},
		now:      time.Now,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.expired(entry) {
		if ok {
			m.mu.Lock()
			if current, still := m.entries[key]; still && m.expired(current) {
				delete(m.entries, key)
			}
			m.mu.Unlock()
		}
		m.recorder.Miss(memoryBackend)
		return false, nil
	}

	if err := json.Unmarshal(entry.payload, dest); err != nil {
		m.recorder.Error(memoryBackend)
		return false, err
	}
	m.recorder.Hit(memoryBackend)
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt)
}
