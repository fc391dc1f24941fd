package cache

import (
	"context"
	"time"
)

// Store holds encoded results with per-entry expiration.
//
// Get reports found=false for missing or expired keys; a miss is not an
// error. Set replaces any existing entry. Implementations must make a write
// visible atomically: concurrent readers observe the whole entry or none.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ValueStore is implemented by in-process stores that can keep results as Go
// values. When the interceptor's store is a ValueStore, hits return the value
// the operation produced without going through a [Codec].
type ValueStore interface {
	GetValue(ctx context.Context, key string) (any, bool, error)
	SetValue(ctx context.Context, key string, value any, ttl time.Duration) error
}
