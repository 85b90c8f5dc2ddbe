package graph

import (
	"context"
	"errors"

	"github.com/aloks98/workspaces/store"
)

// Error codes reported in the "code" extension of GraphQL errors.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeBadInput        = "BAD_USER_INPUT"
	CodeInternal        = "INTERNAL"
)

// Error is a resolver error carrying a machine-readable code.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions is read by graphql-go to populate the error's extensions.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

// ErrUnauthenticated is returned by gated fields for anonymous callers.
var ErrUnauthenticated = &Error{Code: CodeUnauthenticated, Message: "not authenticated"}

// errIDOutOfRange means a stored id does not fit the schema's 32-bit Int.
var errIDOutOfRange = errors.New("id exceeds the GraphQL Int range")

// errNoStore means the request reached the schema without a session.
var errNoStore = errors.New("request context has no store")

func notFound(what string, err error) *Error {
	return &Error{Code: CodeNotFound, Message: what + " not found", Err: err}
}

func badInput(message string, err error) *Error {
	return &Error{Code: CodeBadInput, Message: message, Err: err}
}

// fail converts a store error into a GraphQL error. Unexpected errors are
// logged and reported without their details.
func (r *Resolver) fail(ctx context.Context, op, what string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFound(what, err)
	case errors.Is(err, store.ErrDuplicateEmail):
		return &Error{Code: CodeConflict, Message: "a user with this email already exists", Err: err}
	}
	var gqlErr *Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}
	r.logger.Printf("[graph] %s failed: %v", op, err)
	return &Error{Code: CodeInternal, Message: "internal error", Err: err}
}
