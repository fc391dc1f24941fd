package goVerify

import (
	"context"
	"errors"
	"time"
)

type measureAuthenticator struct {
	inner   Authenticator
	metrics *Metrics
}

// Measure counts outcomes into m and, when latency histograms are enabled,
// records how long inner took.
func Measure(m *Metrics) Decorator {
	return func(inner Authenticator) Authenticator {
		return &measureAuthenticator{inner: inner, metrics: m}
	}
}

func (a *measureAuthenticator) Verify(ctx context.Context, accountID, password, otp string) (bool, error) {
	var start time.Time
	if a.metrics.LatencyEnabled() {
		start = time.Now()
	}

	valid, err := a.inner.Verify(ctx, accountID, password, otp)

	if !start.IsZero() {
		a.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}

	switch {
	case errors.Is(err, ErrAccountLocked):
		a.metrics.Inc(MetricVerifyLocked)
	case err != nil:
		a.metrics.Inc(MetricVerifyUnavailable)
	case valid:
		a.metrics.Inc(MetricVerifyValid)
	default:
		a.metrics.Inc(MetricVerifyInvalid)
	}

	return valid, err
}
