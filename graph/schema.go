// Package graph implements the workspaces GraphQL schema and resolvers.
package graph

import (
	"context"
	_ "embed"
	"log"

	"github.com/graph-gophers/graphql-go"
	gqllog "github.com/graph-gophers/graphql-go/log"
	"github.com/graph-gophers/graphql-go/relay"

	"github.com/aloks98/workspaces/password"
)

//go:generate go run ../cmd/workspaces schema --out .

// SDL is the schema definition served by the API.
//
//go:embed schema.graphql
var SDL string

// Default values for the workspace created at signup.
const (
	DefaultWorkspaceTitle = "Shopping cart"
	DefaultWorkspaceColor = "#ACE4AA"
)

// InvalidCredentialsMessage is returned by login for any failed attempt.
const InvalidCredentialsMessage = "Invalid username or password!"

// Logger is the logging interface used by the resolvers.
type Logger interface {
	Printf(format string, v ...any)
}

// Signer issues bearer tokens for a user ID.
type Signer interface {
	Sign(userID string) (string, error)
}

// Config holds the resolver dependencies and execution limits.
type Config struct {
	Signer Signer
	Hasher password.Hasher
	Logger Logger

	// DefaultWorkspaceTitle and DefaultWorkspaceColor describe the
	// workspace created for every new user.
	DefaultWorkspaceTitle string
	DefaultWorkspaceColor string

	// MaxDepth limits query nesting. Zero means unlimited.
	MaxDepth int

	// MaxParallelism limits concurrently resolved fields. Zero uses the
	// graphql-go default.
	MaxParallelism int
}

// NewSchema parses the SDL against a Resolver built from cfg.
func NewSchema(cfg Config) (*graphql.Schema, error) {
	r := NewResolver(cfg)

	opts := []graphql.SchemaOpt{
		graphql.Logger(panicLogger{r.logger}),
		graphql.UseStringDescriptions(),
	}
	if cfg.MaxDepth > 0 {
		opts = append(opts, graphql.MaxDepth(cfg.MaxDepth))
	}
	if cfg.MaxParallelism > 0 {
		opts = append(opts, graphql.MaxParallelism(cfg.MaxParallelism))
	}

	return graphql.ParseSchema(SDL, r, opts...)
}

// NewHandler returns the GraphQL-over-HTTP handler for schema.
// Requests must already carry a session; see middleware.Builder.
func NewHandler(schema *graphql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}

// panicLogger routes resolver panics to the application logger.
type panicLogger struct {
	logger Logger
}

var _ gqllog.Logger = panicLogger{}

func (l panicLogger) LogPanic(ctx context.Context, value interface{}) {
	l.logger.Printf("[graph] panic during execution: %v", value)
}

func defaultLogger() Logger {
	return log.Default()
}
