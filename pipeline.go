package goVerify

import (
	"context"
)

// Pipeline is the assembled verification chain plus the operator surface
// around its failed-attempt counter. It is safe for concurrent use.
type Pipeline struct {
	config     Config
	auth       Authenticator
	counter    FailedCounter
	metrics    *Metrics
	dispatcher *notifyDispatcher
}

// Verify runs the full chain. See [Authenticator].
func (p *Pipeline) Verify(ctx context.Context, accountID, password, otp string) (bool, error) {
	return p.auth.Verify(ctx, accountID, password, otp)
}

// FailureState returns the current failed count and the lock flag derived
// from it.
func (p *Pipeline) FailureState(ctx context.Context, accountID string) (int, bool, error) {
	count, err := p.counter.GetFailedCount(ctx, accountID)
	if err != nil {
		return 0, false, collaboratorError(ErrCounterUnavailable, err)
	}
	locked, err := p.counter.IsAccountLocked(ctx, accountID)
	if err != nil {
		return 0, false, collaboratorError(ErrCounterUnavailable, err)
	}
	return count, locked, nil
}

// Unlock resets the failed count for accountID outside of a verification.
func (p *Pipeline) Unlock(ctx context.Context, accountID string) error {
	if err := p.counter.ResetFailedCount(ctx, accountID); err != nil {
		return collaboratorError(ErrCounterUnavailable, err)
	}
	return nil
}

// Metrics returns the pipeline's metrics. Useful to share with other
// components such as the result cache.
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// MetricsSnapshot returns a copy of the verification counters.
func (p *Pipeline) MetricsSnapshot() MetricsSnapshot {
	return p.metrics.Snapshot()
}

// NotificationsDropped returns how many async notifications were discarded.
// It is always zero for synchronous delivery.
func (p *Pipeline) NotificationsDropped() uint64 {
	return p.dispatcher.Dropped()
}

// Close drains queued notifications. Verify must not be called afterwards.
func (p *Pipeline) Close() {
	p.dispatcher.Close()
}
