package goVerify

import (
	"errors"
	"strings"
)

// Config selects which policy decorators [Builder.Build] places around the
// base verifier and how they behave.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Lockout      LockoutConfig
	Notification NotificationConfig
	FailureLog   FailureLogConfig
	Trace        TraceConfig
	Metrics      MetricsConfig
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig controls the lockout decorator. The threshold itself belongs
// to the [FailedCounter] implementation.
type LockoutConfig struct {
	Enabled bool
}

/*
====================================
NOTIFICATION CONFIG
====================================
*/

// NotificationConfig controls the failure notification decorator.
//
// MessageFormat must contain exactly one %s verb, which receives the account id.
// When Async is set the notifier is fronted by a bounded queue drained by a
// single worker; DropIfFull decides whether a full queue drops the message or
// blocks the verification until space frees up.
type NotificationConfig struct {
	Enabled       bool
	MessageFormat string
	Async         bool
	BufferSize    int
	DropIfFull    bool
}

/*
====================================
FAILURE LOG CONFIG
====================================
*/

// FailureLogConfig controls the failure logging decorator.
type FailureLogConfig struct {
	Enabled bool
}

/*
====================================
TRACE CONFIG
====================================
*/

// TraceConfig controls the call tracing decorator. Secrets are always redacted.
type TraceConfig struct {
	Enabled bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls in-process verification counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the canonical pipeline: lockout, notification and
// failure logging on, tracing and metrics off.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Lockout: LockoutConfig{
			Enabled: true,
		},
		Notification: NotificationConfig{
			Enabled:       true,
			MessageFormat: "%s failed to verify",
			Async:         false,
			BufferSize:    256,
			DropIfFull:    true,
		},
		FailureLog: FailureLogConfig{
			Enabled: true,
		},
		Trace: TraceConfig{
			Enabled: false,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate checks the configuration for internally inconsistent settings.
func (c *Config) Validate() error {
	// Notification
	if c.Notification.Enabled {
		if strings.Count(c.Notification.MessageFormat, "%s") != 1 ||
			strings.Count(c.Notification.MessageFormat, "%") != 1 {
			return errors.New("Notification MessageFormat must contain exactly one %s verb")
		}
		if c.Notification.Async && c.Notification.BufferSize <= 0 {
			return errors.New("Notification BufferSize must be > 0 when Async is true")
		}
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
