package goVerify

import (
	"errors"
	"fmt"
)

var (
	// ErrCollaboratorUnavailable is matched by every failure raised by an
	// injected collaborator (profile store, hasher, OTP service, counter).
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	// ErrAccountLocked is returned by the lockout decorator without consulting
	// the verifier.
	ErrAccountLocked = errors.New("account locked")
	// ErrProfileNotFound is returned by profile stores for unknown accounts.
	ErrProfileNotFound = fmt.Errorf("%w: profile not found", ErrCollaboratorUnavailable)
	// ErrProfileUnavailable wraps profile store failures.
	ErrProfileUnavailable = fmt.Errorf("%w: profile store", ErrCollaboratorUnavailable)
	// ErrHasherFailed wraps password hasher failures.
	ErrHasherFailed = fmt.Errorf("%w: password hasher", ErrCollaboratorUnavailable)
	// ErrOTPUnavailable wraps one-time-password service failures.
	ErrOTPUnavailable = fmt.Errorf("%w: otp service", ErrCollaboratorUnavailable)
	// ErrCounterUnavailable wraps failed-attempt counter failures.
	ErrCounterUnavailable = fmt.Errorf("%w: failed-attempt counter", ErrCollaboratorUnavailable)
	// ErrMissingCollaborator is returned by Build when a required dependency is nil.
	ErrMissingCollaborator = errors.New("missing collaborator")
)

// collaboratorError classifies err under sentinel unless it is already
// classified as a collaborator failure.
func collaboratorError(sentinel, err error) error {
	if errors.Is(err, ErrCollaboratorUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
