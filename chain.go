package goVerify

import (
	"github.com/rs/zerolog"
)

// Decorator wraps an [Authenticator] with one cross-cutting policy.
type Decorator func(Authenticator) Authenticator

// Chain wraps base with decorators. The first decorator becomes the outermost
// link, so
//
//	Chain(v, Trace(), Lockout(c))
//
// evaluates Trace, then Lockout, then v. Nil decorators are skipped.
func Chain(base Authenticator, decorators ...Decorator) Authenticator {
	a := base
	for i := len(decorators) - 1; i >= 0; i-- {
		if decorators[i] == nil {
			continue
		}
		a = decorators[i](a)
	}
	return a
}

// Option configures the shared settings of a decorator factory.
type Option func(*decoratorOptions)

type decoratorOptions struct {
	logger        zerolog.Logger
	metrics       *Metrics
	messageFormat string
}

func newDecoratorOptions(opts []Option) decoratorOptions {
	o := decoratorOptions{
		logger:        zerolog.Nop(),
		messageFormat: defaultConfig().Notification.MessageFormat,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithLogger sets the logger used by a decorator. The default discards output.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *decoratorOptions) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics a decorator records into.
func WithMetrics(m *Metrics) Option {
	return func(o *decoratorOptions) {
		o.metrics = m
	}
}

// WithMessageFormat overrides the notification text. format receives the
// account id through a single %s verb.
func WithMessageFormat(format string) Option {
	return func(o *decoratorOptions) {
		if format != "" {
			o.messageFormat = format
		}
	}
}
