package goVerify

import (
	"context"
	"crypto/subtle"
)

// Verifier is the base link of every chain. It compares the digest of the
// supplied password and the supplied one-time code against the values held by
// its collaborators and has no other side effects.
type Verifier struct {
	profiles ProfileStore
	hasher   Hasher
	otps     OTPService
}

// NewVerifier returns a base verifier over the given collaborators.
func NewVerifier(profiles ProfileStore, hasher Hasher, otps OTPService) *Verifier {
	return &Verifier{
		profiles: profiles,
		hasher:   hasher,
		otps:     otps,
	}
}

// Verify reports whether password and otp match the stored values for
// accountID. Empty inputs never match. Collaborator failures are returned as
// errors matching [ErrCollaboratorUnavailable] rather than as a false outcome.
func (v *Verifier) Verify(ctx context.Context, accountID, password, otp string) (bool, error) {
	if accountID == "" || password == "" || otp == "" {
		return false, nil
	}

	stored, err := v.profiles.PasswordHash(ctx, accountID)
	if err != nil {
		return false, collaboratorError(ErrProfileUnavailable, err)
	}

	hashed, err := v.hasher.Compute(password)
	if err != nil {
		return false, collaboratorError(ErrHasherFailed, err)
	}

	current, err := v.otps.CurrentOTP(ctx, accountID)
	if err != nil {
		return false, collaboratorError(ErrOTPUnavailable, err)
	}

	return matches(hashed, stored) && matches(otp, current), nil
}

func matches(got, want string) bool {
	if got == "" || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
