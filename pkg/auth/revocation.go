package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	redisclient "github.com/grocerease/grocerease-backend/pkg/redis"
)

var ErrMissingTokenID = errors.New("token id is required")

// RevocationStore remembers logged-out token ids until they would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryRevocations is the single-instance fallback when Redis is not configured.
type MemoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{revoked: map[string]time.Time{}, now: time.Now}
}

func (m *MemoryRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if strings.TrimSpace(jti) == "" {
		return ErrMissingTokenID
	}
	if ttl <= 0 {
		return nil
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, until := range m.revoked {
		if !until.After(now) {
			delete(m.revoked, id)
		}
	}
	m.revoked[jti] = now.Add(ttl)
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[jti]
	return ok && until.After(m.now()), nil
}

// RedisRevocations shares the revocation list across instances.
type RedisRevocations struct {
	client *redisclient.Client
}

func NewRedisRevocations(client *redisclient.Client) *RedisRevocations {
	return &RedisRevocations{client: client}
}

func (r *RedisRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if strings.TrimSpace(jti) == "" {
		return ErrMissingTokenID
	}
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.client.RevokedTokenKey(jti), "1", ttl)
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, nil
	}
	return r.client.Exists(ctx, r.client.RevokedTokenKey(jti))
}
