// Package middleware exposes HTTP middleware that guards the goVerify
// operator endpoints with a bearer token.
//
// # Guards
//
//   - [RequireOperator]: verifies the Authorization bearer token through a
//     [jwt.Manager] and injects the operator claims into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into token checks. Signing,
// parsing and scope rules live in the jwt package.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to jwt.Manager).
//   - Touch the verification pipeline or the failed-attempt counter.
package middleware
