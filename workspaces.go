// Package workspaces serves a GraphQL API for shared task lists.
//
// Users sign up and log in with bearer tokens, own and share workspaces,
// and track items inside them as TODO, DONE or FAIL.
//
// Basic usage:
//
//	app, err := workspaces.New(
//	    workspaces.WithSecret(os.Getenv("SECRET")),
//	    workspaces.WithStore(memory.New()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Close()
//
//	http.Handle("/graphql", app.Handler())
//
// With a configuration file and environment overrides:
//
//	cfg, err := workspaces.LoadFile("workspaces.yaml")
//	...
//	err = cfg.FromEnv()
//	...
//	app, err := workspaces.NewWithConfig(ctx, cfg)
package workspaces

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/graph-gophers/graphql-go"

	"github.com/aloks98/workspaces/graph"
	"github.com/aloks98/workspaces/middleware"
	"github.com/aloks98/workspaces/password"
	"github.com/aloks98/workspaces/store"
	"github.com/aloks98/workspaces/token"
)

// Logger is the logging interface used across the App.
// *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// healthTimeout bounds the store ping done by the health endpoint.
const healthTimeout = 2 * time.Second

// App wires the token service, password hasher, store and GraphQL schema.
type App struct {
	config    *Config
	store     store.Store
	ownsStore bool
	tokens    *token.Service
	hasher    *password.BcryptHasher
	schema    *graphql.Schema
	builder   *middleware.Builder
	logger    Logger

	// mu protects closed
	mu     sync.Mutex
	closed bool
}

// New creates an App from the defaults and the given options.
func New(opts ...Option) (*App, error) {
	return NewWithConfig(context.Background(), DefaultConfig(), opts...)
}

// NewWithConfig creates an App from cfg with opts applied on top.
// Unless a store is injected with WithStore, the backend named by
// cfg.Store is opened and closed together with the App.
func NewWithConfig(ctx context.Context, cfg *Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = log.Default()
	}
	for _, w := range cfg.Warnings() {
		logger.Printf("[workspaces] WARNING: %s", w)
	}

	tokens, err := token.NewService(&token.Config{
		Secret:        cfg.Token.Secret,
		SigningMethod: cfg.Token.SigningMethod,
		TTL:           cfg.Token.TTL,
		Issuer:        cfg.Token.Issuer,
		ClockSkew:     cfg.Token.ClockSkew,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSecretRequired, err)
	}

	cost := cfg.Password.BcryptCost
	if cost == 0 {
		cost = password.DefaultCost
	}
	hasher := password.NewBcryptHasher(&password.BcryptConfig{Cost: cost})

	schema, err := graph.NewSchema(graph.Config{
		Signer:                tokens,
		Hasher:                hasher,
		Logger:                logger,
		DefaultWorkspaceTitle: cfg.Workspace.DefaultTitle,
		DefaultWorkspaceColor: cfg.Workspace.DefaultColor,
		MaxDepth:              cfg.GraphQL.MaxDepth,
		MaxParallelism:        cfg.GraphQL.MaxParallelism,
	})
	if err != nil {
		return nil, NewWorkspaceError(CodeSchemaInvalid, "parse schema", fmt.Errorf("%w: %v", ErrSchemaInvalid, err))
	}

	s, owns := cfg.store, false
	if s == nil {
		if s, err = OpenStore(ctx, cfg.Store); err != nil {
			return nil, err
		}
		owns = true
	}

	if cfg.Store.AutoMigrate {
		if err := s.Migrate(ctx); err != nil {
			if owns {
				_ = s.Close()
			}
			return nil, fmt.Errorf("failed to migrate store: %w", err)
		}
	}

	return &App{
		config:    cfg,
		store:     s,
		ownsStore: owns,
		tokens:    tokens,
		hasher:    hasher,
		schema:    schema,
		builder: middleware.NewBuilder(tokens, s, &middleware.Config{
			TokenExtractor: middleware.ExtractFromHeader(cfg.HTTP.HeaderName),
		}),
		logger: logger,
	}, nil
}

// Config returns the current configuration.
// The returned config should not be modified.
func (a *App) Config() *Config {
	return a.config
}

// Store returns the underlying store.
func (a *App) Store() store.Store {
	return a.store
}

// Schema returns the parsed GraphQL schema.
func (a *App) Schema() *graphql.Schema {
	return a.schema
}

// Tokens returns the token service that signs and verifies bearer tokens.
func (a *App) Tokens() *token.Service {
	return a.tokens
}

// Builder returns the request context builder used by router adapters.
func (a *App) Builder() *middleware.Builder {
	return a.builder
}

// Handler returns the GraphQL endpoint with the session attached to
// every request. Mount it on POST /graphql.
func (a *App) Handler() http.Handler {
	return a.builder.Handler(graph.NewHandler(a.schema))
}

// Endpoints returns the handlers for the router adapters. The GraphQL
// handler is bare; adapters attach the session themselves.
func (a *App) Endpoints() middleware.Endpoints {
	return middleware.Endpoints{
		GraphQL: graph.NewHandler(a.schema),
		Health:  a.HealthHandler(),
	}.WithDefaults()
}

// HealthHandler reports 200 while the store answers a ping and 503 otherwise.
func (a *App) HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := a.Ping(ctx); err != nil {
			a.logger.Printf("[workspaces] health check failed: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}

// Migrate creates or updates the store schema.
func (a *App) Migrate(ctx context.Context) error {
	return a.store.Migrate(ctx)
}

// Ping verifies the store connection is alive.
func (a *App) Ping(ctx context.Context) error {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return a.store.Ping(ctx)
}

// Close releases the store if the App opened it.
// After Close is called, the App should not be used.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if a.ownsStore {
		return a.store.Close()
	}
	return nil
}
