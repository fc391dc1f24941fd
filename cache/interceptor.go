package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Func is the shape of an interceptable operation.
type Func[T any] func(ctx context.Context, args ...any) (T, error)

// Policy marks a call as cacheable. A TTL <= 0 disables caching for the call.
type Policy struct {
	TTL time.Duration
}

// Cacheable reports whether the policy enables caching.
func (p Policy) Cacheable() bool {
	return p.TTL > 0
}

// Stats is a point-in-time copy of interceptor counters. Callers served by a
// collapsed in-flight miss count as hits.
type Stats struct {
	Hits        uint64
	Misses      uint64
	StoreErrors uint64
}

// Interceptor owns the store shared by every wrapped operation. Concurrent
// misses on one key are collapsed so the operation runs once per key at a
// time; the callers that waited share its result.
type Interceptor struct {
	store  Store
	values ValueStore
	logger zerolog.Logger
	flight singleflight.Group

	hits        atomic.Uint64
	misses      atomic.Uint64
	storeErrors atomic.Uint64
}

// InterceptorOption configures an [Interceptor].
type InterceptorOption func(*Interceptor)

// WithLogger sets the logger used to report store failures.
func WithLogger(logger zerolog.Logger) InterceptorOption {
	return func(ic *Interceptor) {
		ic.logger = logger
	}
}

// NewInterceptor returns an interceptor over store.
func NewInterceptor(store Store, opts ...InterceptorOption) *Interceptor {
	ic := &Interceptor{
		store:  store,
		logger: zerolog.Nop(),
	}
	if vs, ok := store.(ValueStore); ok {
		ic.values = vs
	}
	for _, opt := range opts {
		opt(ic)
	}
	return ic
}

// Stats returns hit, miss and store-failure counts.
func (ic *Interceptor) Stats() Stats {
	if ic == nil {
		return Stats{}
	}
	return Stats{
		Hits:        ic.hits.Load(),
		Misses:      ic.misses.Load(),
		StoreErrors: ic.storeErrors.Load(),
	}
}

// Wrap returns op memoized through ic. In-process value stores keep results
// as produced; byte stores encode them with [JSONCodec].
func Wrap[T any](ic *Interceptor, call Call, policy Policy, op Func[T]) Func[T] {
	return WrapCodec[T](ic, call, policy, JSONCodec[T]{}, op)
}

// WrapCodec is [Wrap] with an explicit value codec. The codec is used only
// when ic's store is not a [ValueStore].
//
// The first caller of a collapsed miss runs op with its own ctx; if that ctx
// ends early, the waiting callers receive the same error.
func WrapCodec[T any](ic *Interceptor, call Call, policy Policy, codec Codec[T], op Func[T]) Func[T] {
	if ic == nil || ic.store == nil || !policy.Cacheable() {
		return op
	}

	return func(ctx context.Context, args ...any) (T, error) {
		key := SignatureKey(call, args...)

		ran := false
		res, err, _ := ic.flight.Do(key, func() (any, error) {
			if v, ok := lookup(ctx, ic, key, codec); ok {
				return v, nil
			}
			ran = true
			ic.misses.Add(1)

			v, err := op(ctx, args...)
			if err != nil {
				return v, err
			}
			if !isNil(any(v)) {
				save(ctx, ic, key, v, policy.TTL, codec)
			}
			return v, nil
		})
		if !ran && err == nil {
			ic.hits.Add(1)
		}

		v, _ := res.(T)
		return v, err
	}
}

func lookup[T any](ctx context.Context, ic *Interceptor, key string, codec Codec[T]) (T, bool) {
	var zero T

	if ic.values != nil {
		raw, found, err := ic.values.GetValue(ctx, key)
		if err != nil {
			ic.storeFailed(err, key, "get")
			return zero, false
		}
		if !found {
			return zero, false
		}
		v, ok := raw.(T)
		if !ok {
			ic.storeFailed(fmt.Errorf("cached %T is not %T", raw, zero), key, "decode")
			return zero, false
		}
		return v, true
	}

	b, found, err := ic.store.Get(ctx, key)
	if err != nil {
		ic.storeFailed(err, key, "get")
		return zero, false
	}
	if !found {
		return zero, false
	}

	v, err := codec.Decode(b)
	if err != nil {
		ic.storeFailed(err, key, "decode")
		return zero, false
	}
	return v, true
}

func save[T any](ctx context.Context, ic *Interceptor, key string, v T, ttl time.Duration, codec Codec[T]) {
	if ic.values != nil {
		if err := ic.values.SetValue(ctx, key, v, ttl); err != nil {
			ic.storeFailed(err, key, "set")
		}
		return
	}

	b, err := codec.Encode(v)
	if err != nil {
		ic.storeFailed(err, key, "encode")
		return
	}
	if err := ic.store.Set(ctx, key, b, ttl); err != nil {
		ic.storeFailed(err, key, "set")
	}
}

func (ic *Interceptor) storeFailed(err error, key, op string) {
	ic.storeErrors.Add(1)
	ic.logger.Warn().
		Err(err).
		Str("cache_key", key).
		Str("op", op).
		Msg("result cache store failure")
}
