package goVerify

import "context"

type failureCounterAuthenticator struct {
	inner   Authenticator
	counter FailedCounter
}

// FailureCounter resets the account's counter after a true outcome and adds
// one after a false outcome. Errors from inner leave the counter untouched.
//
// It is the only decorator that mutates the counter and belongs directly
// around the base verifier.
func FailureCounter(counter FailedCounter) Decorator {
	return func(inner Authenticator) Authenticator {
		return &failureCounterAuthenticator{inner: inner, counter: counter}
	}
}

func (a *failureCounterAuthenticator) Verify(ctx context.Context, accountID, password, otp string) (bool, error) {
	valid, err := a.inner.Verify(ctx, accountID, password, otp)
	if err != nil {
		return false, err
	}

	if valid {
		if err := a.counter.ResetFailedCount(ctx, accountID); err != nil {
			return false, collaboratorError(ErrCounterUnavailable, err)
		}
		return true, nil
	}

	if err := a.counter.AddFailedCount(ctx, accountID); err != nil {
		return false, collaboratorError(ErrCounterUnavailable, err)
	}
	return false, nil
}
