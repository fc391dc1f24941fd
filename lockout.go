package goVerify

import "context"

type lockoutAuthenticator struct {
	inner   Authenticator
	counter FailedCounter
}

// Lockout rejects verifications for locked accounts with [ErrAccountLocked]
// without delegating. It only reads the counter.
func Lockout(counter FailedCounter) Decorator {
	return func(inner Authenticator) Authenticator {
		return &lockoutAuthenticator{inner: inner, counter: counter}
	}
}

func (a *lockoutAuthenticator) Verify(ctx context.Context, accountID, password, otp string) (bool, error) {
	locked, err := a.counter.IsAccountLocked(ctx, accountID)
	if err != nil {
		return false, collaboratorError(ErrCounterUnavailable, err)
	}
	if locked {
		return false, ErrAccountLocked
	}
	return a.inner.Verify(ctx, accountID, password, otp)
}
