package token

import "errors"

// Token-related errors.
var (
	// ErrTokenExpired indicates the token has expired.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf or iat in future).
	ErrTokenNotYetValid = errors.New("token is not yet valid")

	// ErrTokenMalformed indicates the token format is invalid.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrTokenInvalidSig indicates the token signature is invalid.
	ErrTokenInvalidSig = errors.New("token signature is invalid")

	// ErrMissingUserID indicates the token carries no user identifier.
	ErrMissingUserID = errors.New("token has no user id")

	// ErrSecretRequired indicates the service was built without a signing secret.
	ErrSecretRequired = errors.New("token secret is required")
)
