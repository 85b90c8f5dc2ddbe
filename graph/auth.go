package graph

import (
	"context"

	"github.com/aloks98/workspaces/middleware"
)

// gatedFields are the root fields marked @authenticated in schema.graphql.
// Every root resolver enters through Resolver.store, which rejects
// anonymous sessions for these fields before anything else runs.
var gatedFields = map[string]bool{
	"allUsers":         true,
	"userDetails":      true,
	"userById":         true,
	"workspaceById":    true,
	"addItem":          true,
	"updateItem":       true,
	"removeItem":       true,
	"createWorkspace":  true,
	"deleteWorkspace":  true,
	"shareWorkspace":   true,
	"unshareWorkspace": true,
}

// authorize returns ErrUnauthenticated when op is gated and the session
// carries no user.
func authorize(ctx context.Context, op string) error {
	if gatedFields[op] && !middleware.SessionFromContext(ctx).Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}
