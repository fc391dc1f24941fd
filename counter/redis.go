package counter

import (
	"context"
	"errors"
	"fmt"
	"time"

	goVerify "github.com/MrEthical07/goVerify"
	"github.com/redis/go-redis/v9"
)

// Config holds the lock threshold and counting window shared by all counters.
type Config struct {
	Threshold int
	Window    time.Duration // 0 = manual unlock only
	Prefix    string
}

// DefaultConfig locks after five consecutive failures and never expires the count.
func DefaultConfig() Config {
	return Config{
		Threshold: 5,
		Window:    0,
		Prefix:    "fa:",
	}
}

// Validate checks the threshold and window.
func (c Config) Validate() error {
	if c.Threshold < 1 {
		return errors.New("counter Threshold must be >= 1")
	}
	if c.Window < 0 {
		return errors.New("counter Window must be >= 0")
	}
	return nil
}

// Redis counts failures with INCR so concurrent verifications of the same
// account never lose an increment.
type Redis struct {
	redis  redis.UniversalClient
	config Config
}

var _ goVerify.FailedCounter = (*Redis)(nil)

// NewRedis creates a Redis-backed counter.
func NewRedis(redisClient redis.UniversalClient, cfg Config) (*Redis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultConfig().Prefix
	}
	return &Redis{redis: redisClient, config: cfg}, nil
}

func (r *Redis) key(accountID string) string {
	return r.config.Prefix + accountID
}

// AddFailedCount increments the failure count for an account.
func (r *Redis) AddFailedCount(ctx context.Context, accountID string) error {
	count, err := r.redis.Incr(ctx, r.key(accountID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %w", goVerify.ErrCounterUnavailable, err)
	}

	if count == 1 && r.config.Window > 0 {
		// Window starts at the first failure.
		if err := r.redis.Expire(ctx, r.key(accountID), r.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %w", goVerify.ErrCounterUnavailable, err)
		}
	}
	return nil
}

// ResetFailedCount clears the failure count (successful verification or manual unlock).
func (r *Redis) ResetFailedCount(ctx context.Context, accountID string) error {
	if err := r.redis.Del(ctx, r.key(accountID)).Err(); err != nil {
		return fmt.Errorf("%w: %w", goVerify.ErrCounterUnavailable, err)
	}
	return nil
}

// GetFailedCount returns the current failure count for an account.
func (r *Redis) GetFailedCount(ctx context.Context, accountID string) (int, error) {
	count, err := r.redis.Get(ctx, r.key(accountID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", goVerify.ErrCounterUnavailable, err)
	}
	return int(count), nil
}

// IsAccountLocked reports whether the current count has reached the threshold.
func (r *Redis) IsAccountLocked(ctx context.Context, accountID string) (bool, error) {
	count, err := r.GetFailedCount(ctx, accountID)
	if err != nil {
		return false, err
	}
	return count >= r.config.Threshold, nil
}
