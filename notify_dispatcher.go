package goVerify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

type notification struct {
	accountID string
	message   string
}

// notifyDispatcher fronts a Notifier with a bounded queue drained by one
// worker. Notify never reports delivery errors to the caller; the worker logs
// them instead.
type notifyDispatcher struct {
	cfg       NotificationConfig
	next      Notifier
	logger    zerolog.Logger
	metrics   *Metrics
	ch        chan notification
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64

	// mu orders enqueues against Close: senders hold it shared, Close holds
	// it exclusively while it marks the dispatcher closed.
	mu     sync.RWMutex
	closed bool
}

func newNotifyDispatcher(cfg NotificationConfig, next Notifier, logger zerolog.Logger, metrics *Metrics) *notifyDispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}

	d := &notifyDispatcher{
		cfg:     cfg,
		next:    next,
		logger:  logger,
		metrics: metrics,
		ch:      make(chan notification, cfg.BufferSize),
		done:    make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *notifyDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case n := <-d.ch:
			d.deliver(n)
		case <-d.done:
			for {
				select {
				case n := <-d.ch:
					d.deliver(n)
				default:
					return
				}
			}
		}
	}
}

func (d *notifyDispatcher) deliver(n notification) {
	if err := d.next.Notify(context.Background(), n.accountID, n.message); err != nil {
		d.metrics.Inc(MetricNotificationFailed)
		d.logger.Warn().
			Err(err).
			Str("account_id", n.accountID).
			Msg("queued failure notification not delivered")
	}
}

// Notify enqueues the message. With DropIfFull a full queue drops it;
// otherwise Notify blocks until there is room or ctx ends. Messages arriving
// after Close are dropped.
func (d *notifyDispatcher) Notify(ctx context.Context, accountID, message string) error {
	if d == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		return nil
	}

	n := notification{accountID: accountID, message: message}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- n:
		default:
			d.dropped.Add(1)
		}
		return nil
	}

	select {
	case d.ch <- n:
	case <-ctx.Done():
		d.dropped.Add(1)
	}
	return nil
}

// Close stops accepting messages and waits for queued ones to be delivered.
// Concurrent and repeated calls all wait for the drain.
func (d *notifyDispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.done)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// Dropped returns how many messages were discarded: queue full, ctx ended
// while waiting, or sent after Close.
func (d *notifyDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
