package goVerify

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Builder assembles a [Pipeline] in canonical decorator order.
//
// A Builder is single-use: the chain it produces is fixed for the lifetime of
// the pipeline.
type Builder struct {
	config Config

	profiles ProfileStore
	hasher   Hasher
	otps     OTPService
	counter  FailedCounter
	notifier Notifier
	logger   zerolog.Logger

	built bool
}

// New returns a builder holding [DefaultConfig] and a discarding logger.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the builder configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithProfileStore sets the source of stored password digests. Required.
func (b *Builder) WithProfileStore(p ProfileStore) *Builder {
	b.profiles = p
	return b
}

// WithHasher sets the password hasher. Required.
func (b *Builder) WithHasher(h Hasher) *Builder {
	b.hasher = h
	return b
}

// WithOTPService sets the one-time code source. Required.
func (b *Builder) WithOTPService(o OTPService) *Builder {
	b.otps = o
	return b
}

// WithFailedCounter sets the failed-attempt counter. Required.
func (b *Builder) WithFailedCounter(c FailedCounter) *Builder {
	b.counter = c
	return b
}

// WithNotifier sets the failure notifier. Required when notifications are
// enabled.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithLogger sets the logger shared by every decorator.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the verification latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and collaborators and composes the chain
//
//	Measure -> Trace -> Lockout -> Notification -> FailureLog -> FailureCounter -> Verifier
//
// leaving out the decorators the configuration disables.
func (b *Builder) Build() (*Pipeline, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch {
	case b.profiles == nil:
		return nil, fmt.Errorf("%w: profile store", ErrMissingCollaborator)
	case b.hasher == nil:
		return nil, fmt.Errorf("%w: hasher", ErrMissingCollaborator)
	case b.otps == nil:
		return nil, fmt.Errorf("%w: otp service", ErrMissingCollaborator)
	case b.counter == nil:
		return nil, fmt.Errorf("%w: failed counter", ErrMissingCollaborator)
	case cfg.Notification.Enabled && b.notifier == nil:
		return nil, fmt.Errorf("%w: notifier", ErrMissingCollaborator)
	}

	p := &Pipeline{
		config:  cfg,
		counter: b.counter,
		metrics: NewMetrics(cfg.Metrics),
	}

	common := []Option{WithLogger(b.logger), WithMetrics(p.metrics)}

	var decorators []Decorator
	if cfg.Metrics.Enabled {
		decorators = append(decorators, Measure(p.metrics))
	}
	if cfg.Trace.Enabled {
		decorators = append(decorators, Trace(common...))
	}
	if cfg.Lockout.Enabled {
		decorators = append(decorators, Lockout(b.counter))
	}
	if cfg.Notification.Enabled {
		notifier := b.notifier
		if cfg.Notification.Async {
			p.dispatcher = newNotifyDispatcher(cfg.Notification, notifier, b.logger, p.metrics)
			notifier = p.dispatcher
		}
		decorators = append(decorators, Notification(notifier,
			append(common, WithMessageFormat(cfg.Notification.MessageFormat))...))
	}
	if cfg.FailureLog.Enabled {
		decorators = append(decorators, FailureLog(b.counter, common...))
	}
	decorators = append(decorators, FailureCounter(b.counter))

	p.auth = Chain(NewVerifier(b.profiles, b.hasher, b.otps), decorators...)

	b.built = true

	return p, nil
}
