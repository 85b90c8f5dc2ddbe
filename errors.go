package workspaces

import (
	"errors"
	"fmt"
)

// Error codes for categorizing errors.
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeSecretRequired   = "SECRET_REQUIRED"
	CodeStoreRequired    = "STORE_REQUIRED"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeStoreUnsupported = "STORE_UNSUPPORTED"
	CodeSchemaInvalid    = "SCHEMA_INVALID"
	CodeClosed           = "CLOSED"
)

// Sentinel errors for use with errors.Is().
var (
	// Config errors
	ErrConfigInvalid  = errors.New("configuration is invalid")
	ErrSecretRequired = errors.New("token secret is required")

	// Store errors
	ErrStoreRequired    = errors.New("store is required")
	ErrStoreUnavailable = errors.New("store is unavailable")
	ErrStoreUnsupported = errors.New("store kind is not supported")

	// Lifecycle errors
	ErrSchemaInvalid = errors.New("graphql schema is invalid")
	ErrClosed        = errors.New("app has been closed")
)

// WorkspaceError is a structured error type that includes an error code and optional wrapped error.
type WorkspaceError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *WorkspaceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *WorkspaceError) Unwrap() error {
	return e.Err
}

// NewWorkspaceError creates a new WorkspaceError with the given code, message, and optional wrapped error.
func NewWorkspaceError(code, message string, err error) *WorkspaceError {
	return &WorkspaceError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsConfigError returns true if the error is a configuration-related error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigInvalid) ||
		errors.Is(err, ErrSecretRequired)
}

// IsStoreError returns true if the error is a store-related error.
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStoreRequired) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrStoreUnsupported)
}
