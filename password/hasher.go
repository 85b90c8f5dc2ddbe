// Package password hashes and verifies user passwords.
package password

import "errors"

// ErrPasswordTooLong is returned for passwords longer than the hash can represent.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Hasher defines the interface for password hashing algorithms.
type Hasher interface {
	// Hash creates a hash from a password.
	Hash(password string) (string, error)

	// Verify checks if a password matches a hash.
	Verify(password, hash string) (bool, error)

	// VerifyAbsent spends the same work as Verify when no hash exists,
	// so a failed login for an unknown account takes as long as one
	// for a wrong password. It always reports false.
	VerifyAbsent(password string) bool

	// NeedsRehash checks if a hash needs to be regenerated.
	// Returns true if the hash was created with different parameters.
	NeedsRehash(hash string) bool
}
