// Package middleware builds the per-request session that resolvers read:
// the caller's user ID (if any) and the data access store.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/aloks98/workspaces/store"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

// SessionKey is the context key for storing the request session.
const SessionKey contextKey = "workspaces_session"

// Verifier resolves a raw Authorization header value to a user ID.
// It reports ok == false for absent and invalid credentials alike.
type Verifier interface {
	Verify(header string) (userID string, ok bool)
}

// Session is the per-request context handed to every resolver.
// Resolvers treat it as read-only.
type Session struct {
	// UserID is empty for anonymous callers.
	UserID string

	// Store is the data access facade for this request.
	Store store.Store
}

// Authenticated reports whether the caller presented a valid token.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}

// TokenExtractor extracts the raw credential from an HTTP request.
type TokenExtractor func(r *http.Request) string

// Config holds middleware configuration.
type Config struct {
	// TokenExtractor extracts the credential from the request.
	// Defaults to the raw Authorization header value.
	TokenExtractor TokenExtractor
}

// DefaultConfig returns a default middleware configuration.
func DefaultConfig() *Config {
	return &Config{
		TokenExtractor: ExtractFromHeader("Authorization"),
	}
}

// ExtractFromHeader creates a TokenExtractor that returns a header value as is.
// Scheme handling is left to the Verifier.
func ExtractFromHeader(header string) TokenExtractor {
	return func(r *http.Request) string {
		return strings.TrimSpace(r.Header.Get(header))
	}
}

// ExtractFromCookie creates a TokenExtractor that reads a cookie.
func ExtractFromCookie(name string) TokenExtractor {
	return func(r *http.Request) string {
		cookie, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
}

// ChainExtractors chains multiple extractors, returning the first non-empty result.
func ChainExtractors(extractors ...TokenExtractor) TokenExtractor {
	return func(r *http.Request) string {
		for _, extractor := range extractors {
			if token := extractor(r); token != "" {
				return token
			}
		}
		return ""
	}
}

// WithSession stores the session in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// SessionFromContext retrieves the session from ctx.
// A context without one yields an anonymous session with no store.
func SessionFromContext(ctx context.Context) *Session {
	if v := ctx.Value(SessionKey); v != nil {
		if s, ok := v.(*Session); ok && s != nil {
			return s
		}
	}
	return &Session{}
}

// GetUserID retrieves the caller's user ID from ctx.
func GetUserID(ctx context.Context) string {
	return SessionFromContext(ctx).UserID
}
