package goVerify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

type notificationAuthenticator struct {
	inner    Authenticator
	notifier Notifier
	format   string
	logger   zerolog.Logger
	metrics  *Metrics
}

// Notification pushes one message naming the account after every false
// outcome. Notifier errors are logged at warn level and never change the
// outcome.
func Notification(notifier Notifier, opts ...Option) Decorator {
	o := newDecoratorOptions(opts)
	return func(inner Authenticator) Authenticator {
		return &notificationAuthenticator{
			inner:    inner,
			notifier: notifier,
			format:   o.messageFormat,
			logger:   o.logger,
			metrics:  o.metrics,
		}
	}
}

func (a *notificationAuthenticator) Verify(ctx context.Context, accountID, password, otp string) (bool, error) {
	valid, err := a.inner.Verify(ctx, accountID, password, otp)
	if err != nil || valid {
		return valid, err
	}

	msg := fmt.Sprintf(a.format, accountID)
	if nerr := a.notifier.Notify(ctx, accountID, msg); nerr != nil {
		a.metrics.Inc(MetricNotificationFailed)
		a.logger.Warn().
			Err(nerr).
			Str("account_id", accountID).
			Msg("failure notification not delivered")
	}

	return false, nil
}
