// Package otp implements goVerify.OTPService with RFC 6238 time-based codes.
package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	goVerify "github.com/MrEthical07/goVerify"
	pqotp "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// ErrSecretNotFound is returned by secret sources for accounts without an
// enrolled secret.
var ErrSecretNotFound = errors.New("totp secret not found")

// SecretSource returns the base32-encoded TOTP secret for an account.
type SecretSource interface {
	Secret(ctx context.Context, accountID string) (string, error)
}

// Config holds the code parameters. Zero values fall back to the RFC 6238
// defaults (30 seconds, six digits, SHA1).
type Config struct {
	Period    uint
	Digits    pqotp.Digits
	Algorithm pqotp.Algorithm
}

// TOTP derives the current code from an account's secret.
type TOTP struct {
	secrets SecretSource
	opts    totp.ValidateOpts
	now     func() time.Time
}

var _ goVerify.OTPService = (*TOTP)(nil)

// New returns a TOTP service reading secrets from src.
func New(src SecretSource, cfg Config) *TOTP {
	if cfg.Period == 0 {
		cfg.Period = 30
	}
	if cfg.Digits == 0 {
		cfg.Digits = pqotp.DigitsSix
	}
	return &TOTP{
		secrets: src,
		opts: totp.ValidateOpts{
			Period:    cfg.Period,
			Skew:      0,
			Digits:    cfg.Digits,
			Algorithm: cfg.Algorithm,
		},
		now: time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (t *TOTP) WithClock(now func() time.Time) *TOTP {
	t.now = now
	return t
}

// CurrentOTP returns the code for the current period.
func (t *TOTP) CurrentOTP(ctx context.Context, accountID string) (string, error) {
	secret, err := t.secrets.Secret(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", goVerify.ErrOTPUnavailable, err)
	}

	code, err := totp.GenerateCodeCustom(secret, t.now(), t.opts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", goVerify.ErrOTPUnavailable, err)
	}
	return code, nil
}
