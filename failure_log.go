package goVerify

import (
	"context"

	"github.com/rs/zerolog"
)

type failureLogAuthenticator struct {
	inner   Authenticator
	counter FailedCounter
	logger  zerolog.Logger
}

// FailureLog logs the account id and its current failed count after every
// false outcome. Placed outside [FailureCounter], the logged count already
// includes the attempt being reported. A counter read failure is logged and
// never replaces the outcome.
func FailureLog(counter FailedCounter, opts ...Option) Decorator {
	o := newDecoratorOptions(opts)
	return func(inner Authenticator) Authenticator {
		return &failureLogAuthenticator{inner: inner, counter: counter, logger: o.logger}
	}
}

func (a *failureLogAuthenticator) Verify(ctx context.Context, accountID, password, otp string) (bool, error) {
	valid, err := a.inner.Verify(ctx, accountID, password, otp)
	if err != nil || valid {
		return valid, err
	}

	count, err := a.counter.GetFailedCount(ctx, accountID)
	if err != nil {
		a.logger.Warn().
			Err(err).
			Str("account_id", accountID).
			Msg("verification failed; failed count unreadable")
		return false, nil
	}

	a.logger.Info().
		Str("account_id", accountID).
		Int("failed_count", count).
		Msg("verification failed")

	return false, nil
}
