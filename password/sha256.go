package password

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256 hashes passwords to lowercase hex SHA-256. It exists for stores
// provisioned with unsalted digests; prefer [Argon2] for new deployments.
type SHA256 struct{}

// Compute returns the lowercase hex SHA-256 of password.
func (SHA256) Compute(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}
