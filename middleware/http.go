package middleware

import (
	"context"
	"net/http"

	"github.com/aloks98/workspaces/store"
)

// Builder produces request sessions. It never rejects a request:
// a missing or invalid credential yields an anonymous session.
type Builder struct {
	verifier Verifier
	store    store.Store
	config   *Config
}

// NewBuilder creates a session builder.
// If cfg is nil, DefaultConfig is used.
func NewBuilder(verifier Verifier, s store.Store, cfg *Config) *Builder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.TokenExtractor == nil {
		cfg.TokenExtractor = DefaultConfig().TokenExtractor
	}
	return &Builder{verifier: verifier, store: s, config: cfg}
}

// Session builds a session from a raw credential value.
func (b *Builder) Session(credential string) *Session {
	sess := &Session{Store: b.store}
	if credential == "" || b.verifier == nil {
		return sess
	}
	if userID, ok := b.verifier.Verify(credential); ok {
		sess.UserID = userID
	}
	return sess
}

// Build attaches a session for credential to ctx.
func (b *Builder) Build(ctx context.Context, credential string) context.Context {
	return WithSession(ctx, b.Session(credential))
}

// FromRequest attaches a session for r's credential to r's context.
func (b *Builder) FromRequest(r *http.Request) *http.Request {
	return r.WithContext(b.Build(r.Context(), b.config.TokenExtractor(r)))
}

// Handler is net/http middleware that attaches the session to every request.
func (b *Builder) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, b.FromRequest(r))
	})
}

// Endpoints are the handlers every router adapter mounts.
type Endpoints struct {
	// GraphQLPath defaults to /graphql. Only POST is routed.
	GraphQLPath string
	GraphQL     http.Handler

	// HealthPath defaults to /healthz.
	HealthPath string
	Health     http.Handler
}

// WithDefaults returns a copy of e with empty paths filled in.
func (e Endpoints) WithDefaults() Endpoints {
	if e.GraphQLPath == "" {
		e.GraphQLPath = "/graphql"
	}
	if e.HealthPath == "" {
		e.HealthPath = "/healthz"
	}
	if e.Health == nil {
		e.Health = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}
	return e
}
