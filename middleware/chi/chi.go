// Package chi mounts the workspaces endpoints on a Chi router.
// Chi uses standard net/http middleware, so the session builder is
// installed as is.
package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aloks98/workspaces/middleware"
)

// Config is an alias for middleware.Config.
type Config = middleware.Config

// Endpoints is an alias for middleware.Endpoints.
type Endpoints = middleware.Endpoints

// DefaultConfig returns a default middleware configuration.
func DefaultConfig() *Config {
	return middleware.DefaultConfig()
}

// Session returns Chi middleware that attaches the request session.
func Session(b *middleware.Builder) func(http.Handler) http.Handler {
	return b.Handler
}

// NewRouter creates a Chi router serving ep.
// Access logging is enabled when logRequests is true.
func NewRouter(b *middleware.Builder, ep Endpoints, logRequests bool) *chi.Mux {
	ep = ep.WithDefaults()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if logRequests {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)

	r.Get(ep.HealthPath, ep.Health.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(Session(b))
		r.Method(http.MethodPost, ep.GraphQLPath, ep.GraphQL)
	})

	return r
}
