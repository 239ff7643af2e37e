package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes tokens by JTI before they expire. Entries only need
// to live as long as the token they block.
type TokenBlacklist interface {
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

var (
	_ TokenBlacklist = (*RedisTokenBlacklist)(nil)
	_ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
)

const revokedKeyPrefix = "erp:auth:revoked:"

// RedisTokenBlacklist shares revocations between instances
type RedisTokenBlacklist struct {
	client redis.UniversalClient
}

func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func (b *RedisTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	// a token that is already expired cannot be used anyway
	if ttl <= 0 {
		return nil
	}
	if err := b.client.SetEx(ctx, revokedKeyPrefix+jti, time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke token %s: %w", jti, err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("lookup revoked token %s: %w", jti, err)
	}
	return n == 1, nil
}

// InMemoryTokenBlacklist serves single-instance deployments and tests.
// Expired entries are dropped whenever a new token is revoked.
type InMemoryTokenBlacklist struct {
	mu    sync.RWMutex
	until map[string]time.Time
	now   func() time.Time
}

func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{until: map[string]time.Time{}, now: time.Now}
}

func (b *InMemoryTokenBlacklist) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, exp := range b.until {
		if !now.Before(exp) {
			delete(b.until, id)
		}
	}
	b.until[jti] = now.Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.RLock()
	exp, ok := b.until[jti]
	b.mu.RUnlock()
	return ok && b.now().Before(exp), nil
}
