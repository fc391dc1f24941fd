package goVerify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const redacted = "[REDACTED]"

type traceAuthenticator struct {
	inner  Authenticator
	logger zerolog.Logger
}

// Trace logs every call and its outcome at debug level. Password and one-time
// code are replaced by a fixed marker.
func Trace(opts ...Option) Decorator {
	o := newDecoratorOptions(opts)
	return func(inner Authenticator) Authenticator {
		return &traceAuthenticator{inner: inner, logger: o.logger}
	}
}

func (a *traceAuthenticator) Verify(ctx context.Context, accountID, password, otp string) (bool, error) {
	a.logger.Debug().
		Str("account_id", accountID).
		Str("password", redactedIfSet(password)).
		Str("otp", redactedIfSet(otp)).
		Msg("verify called")

	start := time.Now()
	valid, err := a.inner.Verify(ctx, accountID, password, otp)

	a.logger.Debug().
		Str("account_id", accountID).
		Bool("valid", valid).
		Err(err).
		Dur("elapsed", time.Since(start)).
		Msg("verify returned")

	return valid, err
}

func redactedIfSet(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}
