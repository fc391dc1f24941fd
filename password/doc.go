// Package password implements the goVerify.Hasher digests compared against
// stored profile values.
//
// # Output formats
//
// [SHA256] produces lowercase hex. [Argon2] produces a PHC string with a
// site-wide salt:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Both are deterministic: the verifier compares digests for equality, so the
// same plaintext must always produce the same output. [Argon2.NeedsUpgrade]
// flags stored digests produced under different parameters.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive digests.
//   - Import any other goVerify package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
