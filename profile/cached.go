package profile

import (
	"context"
	"time"

	goVerify "github.com/MrEthical07/goVerify"
	"github.com/MrEthical07/goVerify/cache"
)

// Cached memoizes PasswordHash lookups of another store through a result
// cache interceptor. Lookup failures, including unknown accounts, are never
// cached. A zero TTL or nil interceptor makes it a pass-through.
type Cached struct {
	lookup cache.Func[string]
}

var _ goVerify.ProfileStore = (*Cached)(nil)

// NewCached wraps next.
func NewCached(next goVerify.ProfileStore, ic *cache.Interceptor, ttl time.Duration) *Cached {
	op := func(ctx context.Context, args ...any) (string, error) {
		return next.PasswordHash(ctx, args[0].(string))
	}
	return &Cached{
		lookup: cache.Wrap[string](ic, cache.CallOf(next, "PasswordHash"), cache.Policy{TTL: ttl}, op),
	}
}

// PasswordHash serves from the result cache, falling back to the wrapped store.
func (c *Cached) PasswordHash(ctx context.Context, accountID string) (string, error) {
	return c.lookup(ctx, accountID)
}
