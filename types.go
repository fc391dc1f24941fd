package goVerify

import "context"

// Authenticator is the verification contract shared by the base [Verifier] and
// every decorator.
//
// Verify returns (true, nil) for matching credentials and (false, nil) for
// non-matching ones. A non-nil error means no outcome was produced.
type Authenticator interface {
	Verify(ctx context.Context, accountID, password, otp string) (bool, error)
}

// AuthenticatorFunc adapts a function to [Authenticator].
type AuthenticatorFunc func(ctx context.Context, accountID, password, otp string) (bool, error)

// Verify calls f.
func (f AuthenticatorFunc) Verify(ctx context.Context, accountID, password, otp string) (bool, error) {
	return f(ctx, accountID, password, otp)
}

// ProfileStore returns the stored password digest for an account.
//
// Unknown accounts must be reported as [ErrProfileNotFound].
type ProfileStore interface {
	PasswordHash(ctx context.Context, accountID string) (string, error)
}

// Hasher computes the digest compared against [ProfileStore.PasswordHash].
// Compute must be deterministic for a given input.
type Hasher interface {
	Compute(plaintext string) (string, error)
}

// OTPService returns the one-time code currently expected for an account.
type OTPService interface {
	CurrentOTP(ctx context.Context, accountID string) (string, error)
}

// Notifier pushes a free-text message about an account. Delivery is
// fire-and-forget from the pipeline's point of view: errors are logged and
// never change the verification outcome.
type Notifier interface {
	Notify(ctx context.Context, accountID, message string) error
}

// FailedCounter tracks consecutive failed verifications per account.
//
// IsAccountLocked must be derived from the current count on every call; it is
// never stored independently. Implementations must provide per-key atomicity
// for AddFailedCount under concurrent callers.
type FailedCounter interface {
	IsAccountLocked(ctx context.Context, accountID string) (bool, error)
	AddFailedCount(ctx context.Context, accountID string) error
	ResetFailedCount(ctx context.Context, accountID string) error
	GetFailedCount(ctx context.Context, accountID string) (int, error)
}
