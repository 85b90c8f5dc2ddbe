package graph

import (
	"context"

	"github.com/aloks98/workspaces/middleware"
	"github.com/aloks98/workspaces/password"
	"github.com/aloks98/workspaces/store"
)

// Resolver is the root resolver for both queries and mutations.
// It holds no per-request state; the caller's identity and the store
// come from the session in the request context.
type Resolver struct {
	signer Signer
	hasher password.Hasher
	logger Logger

	defaultTitle string
	defaultColor string
}

// NewResolver creates a root resolver, filling in defaults for missing
// dependencies.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{
		signer:       cfg.Signer,
		hasher:       cfg.Hasher,
		logger:       cfg.Logger,
		defaultTitle: cfg.DefaultWorkspaceTitle,
		defaultColor: cfg.DefaultWorkspaceColor,
	}
	if r.hasher == nil {
		r.hasher = password.NewBcryptHasher(nil)
	}
	if r.logger == nil {
		r.logger = defaultLogger()
	}
	if r.defaultTitle == "" {
		r.defaultTitle = DefaultWorkspaceTitle
	}
	if r.defaultColor == "" {
		r.defaultColor = DefaultWorkspaceColor
	}
	return r
}

// store returns the data access store of the request session after
// checking that the session may run op.
func (r *Resolver) store(ctx context.Context, op string) (store.Store, error) {
	if err := authorize(ctx, op); err != nil {
		return nil, err
	}
	s := middleware.SessionFromContext(ctx).Store
	if s == nil {
		return nil, r.fail(ctx, op, "", errNoStore)
	}
	return s, nil
}
