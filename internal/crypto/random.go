// Package crypto generates signing secrets.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// MinSecretBytes is the smallest secret GenerateSecret produces.
const MinSecretBytes = 32

// Encoding selects how GenerateSecret renders the random bytes.
type Encoding string

const (
	EncodingBase64 Encoding = "base64"
	EncodingHex    Encoding = "hex"
)

// randomBytes returns n cryptographically secure random bytes.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// GenerateSecret returns an HMAC signing secret made of n random bytes.
// Sizes below MinSecretBytes are raised to it. The base64 form is
// URL-safe and unpadded so it can be pasted into an environment file.
func GenerateSecret(n int, enc Encoding) (string, error) {
	if n < MinSecretBytes {
		n = MinSecretBytes
	}
	b, err := randomBytes(n)
	if err != nil {
		return "", err
	}

	switch enc {
	case EncodingBase64, "":
		return base64.RawURLEncoding.EncodeToString(b), nil
	case EncodingHex:
		return hex.EncodeToString(b), nil
	default:
		return "", fmt.Errorf("crypto: unknown encoding %q", enc)
	}
}
