// Package cache memoizes the results of arbitrary calls in a TTL-bounded store.
//
// An [Interceptor] wraps an operation with [Wrap]. Every call derives a key
// from the call identity (owner type and method name) and the ordered,
// stringified arguments. A hit returns the stored value without invoking the
// operation; a miss invokes it and stores non-nil results until the policy's
// TTL elapses. A zero TTL, or a nil interceptor, makes the wrapper a pure
// pass-through that never touches the store.
//
// Failures are never cached. Store failures fail open: a failed read behaves
// like a miss and a failed write is ignored.
package cache
