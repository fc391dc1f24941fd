// Package goVerify verifies account credentials (stored password hash plus a
// one-time code) through a chain of composable policy decorators.
//
// The base [Verifier] performs the single authoritative comparison. Every
// cross-cutting policy (lockout, failure counting, failure logging, failure
// notification, tracing, metrics) is a [Decorator] that wraps exactly one inner
// [Authenticator]. Chains are assembled once, at startup, either explicitly with
// [Chain] or through [Builder.Build], and are immutable afterwards.
//
// # Canonical order
//
// From the outside in:
//
//	Measure -> Trace -> Lockout -> Notification -> FailureLog -> FailureCounter -> Verifier
//
// The failure counter sits next to the verifier so that the logging and
// notification decorators observe the count after it has been updated. The
// lockout decorator short-circuits with [ErrAccountLocked] before any
// credential collaborator is consulted.
//
// # Errors
//
// Wrong credentials are not an error: Verify returns (false, nil). Collaborator
// failures match [ErrCollaboratorUnavailable] and pass through every decorator
// untouched, so an unreachable dependency never counts as a failed attempt.
//
// # What this package must NOT do
//
//   - Construct its own collaborators. Everything is injected.
//   - Retry collaborator calls or impose timeouts (callers own the context).
//   - Log passwords or one-time codes.
package goVerify
