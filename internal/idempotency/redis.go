package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idem"

// RedisStore records idempotency keys in Redis so every API instance sees
// the same set of processed requests.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store using the provided Redis client and TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Open parses a redis:// URL, connects and verifies the server responds.
func Open(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, ttl), nil
}

func (s *RedisStore) key(scope, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, scope, key)
}

// Claim records key within scope. It returns false when the key was already
// claimed and has not expired.
func (s *RedisStore) Claim(ctx context.Context, scope, key string) (bool, error) {
	return s.client.SetNX(ctx, s.key(scope, key), 1, s.ttl).Result()
}

// Release forgets a claimed key so the client may retry a failed request.
func (s *RedisStore) Release(ctx context.Context, scope, key string) error {
	return s.client.Del(ctx, s.key(scope, key)).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
