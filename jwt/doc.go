// Package jwt issues and verifies operator tokens for the goVerify admin
// endpoints (failure inspection and manual unlock).
//
// Tokens are HS256 or Ed25519 signed, carry a subject and a scope, and are
// parsed with a fixed algorithm, optional issuer/audience checks and an
// optional kid-keyed verify set for key rotation.
package jwt
