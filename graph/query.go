package graph

import (
	"context"
	"errors"

	"github.com/aloks98/workspaces/middleware"
	"github.com/aloks98/workspaces/store"
)

// AllUsers lists every user.
func (r *Resolver) AllUsers(ctx context.Context) ([]*UserResolver, error) {
	s, err := r.store(ctx, "allUsers")
	if err != nil {
		return nil, err
	}
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, r.fail(ctx, "allUsers", "users", err)
	}
	return r.users(users), nil
}

// UserDetails returns the caller's own user, or null if the account
// behind a still-valid token is gone.
func (r *Resolver) UserDetails(ctx context.Context) (*UserResolver, error) {
	return r.lookupUser(ctx, "userDetails", middleware.GetUserID(ctx))
}

// UserByID returns a user by id, or null.
func (r *Resolver) UserByID(ctx context.Context, args struct{ ID string }) (*UserResolver, error) {
	return r.lookupUser(ctx, "userById", args.ID)
}

func (r *Resolver) lookupUser(ctx context.Context, op, id string) (*UserResolver, error) {
	s, err := r.store(ctx, op)
	if err != nil {
		return nil, err
	}
	u, err := s.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(ctx, op, "user", err)
	}
	return r.user(u), nil
}

// WorkspaceByID returns a workspace by id, or null.
func (r *Resolver) WorkspaceByID(ctx context.Context, args struct{ WorkspaceID int32 }) (*WorkspaceResolver, error) {
	s, err := r.store(ctx, "workspaceById")
	if err != nil {
		return nil, err
	}
	w, err := s.GetWorkspace(ctx, int64(args.WorkspaceID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(ctx, "workspaceById", "workspace", err)
	}
	return r.workspace(w), nil
}
