package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a [Store] backed by Redis. Expiry is delegated to Redis via
// SET ... PX, so an expired entry is never returned.
type RedisStore struct {
	redis  redis.Cmdable
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore returns a store that namespaces every key with prefix.
func NewRedisStore(rdb redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rc:"
	}
	return &RedisStore{redis: rdb, prefix: prefix}
}

// Get returns the bytes stored under key; redis.Nil is a miss.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.redis.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

// Set stores value under key with a Redis expiry of ttl. A ttl <= 0 stores
// nothing.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, s.prefix+key, value, ttl).Err()
}
