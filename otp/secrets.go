package otp

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// MemorySecrets is an in-process SecretSource.
type MemorySecrets struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemorySecrets returns a source pre-loaded with secrets keyed by account.
func NewMemorySecrets(secrets map[string]string) *MemorySecrets {
	m := &MemorySecrets{secrets: make(map[string]string, len(secrets))}
	for id, s := range secrets {
		m.secrets[id] = normalizeSecret(s)
	}
	return m
}

// Secret returns the stored secret or [ErrSecretNotFound].
func (m *MemorySecrets) Secret(_ context.Context, accountID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.secrets[accountID]
	if !ok {
		return "", ErrSecretNotFound
	}
	return s, nil
}

// Put stores or replaces the secret for accountID.
func (m *MemorySecrets) Put(_ context.Context, accountID, secret string) error {
	m.mu.Lock()
	m.secrets[accountID] = normalizeSecret(secret)
	m.mu.Unlock()
	return nil
}

// RedisSecrets reads secrets from Redis string keys "<prefix><account>".
type RedisSecrets struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisSecrets returns a Redis-backed source. An empty prefix defaults to "otp:".
func NewRedisSecrets(rdb redis.UniversalClient, prefix string) *RedisSecrets {
	if prefix == "" {
		prefix = "otp:"
	}
	return &RedisSecrets{redis: rdb, prefix: prefix}
}

// Secret reads the account secret. A missing key is [ErrSecretNotFound].
func (r *RedisSecrets) Secret(ctx context.Context, accountID string) (string, error) {
	s, err := r.redis.Get(ctx, r.prefix+accountID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSecretNotFound
		}
		return "", err
	}
	return s, nil
}

// Put stores or replaces the secret for accountID.
func (r *RedisSecrets) Put(ctx context.Context, accountID, secret string) error {
	return r.redis.Set(ctx, r.prefix+accountID, normalizeSecret(secret), 0).Err()
}

func normalizeSecret(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}
