package workspaces

import (
	"time"

	"github.com/aloks98/workspaces/store"
)

// Option is a function that modifies the configuration.
type Option func(*Config)

// WithSecret sets the secret key for HMAC signing.
func WithSecret(secret string) Option {
	return func(c *Config) {
		c.Token.Secret = secret
	}
}

// WithTokenTTL sets how long issued tokens remain valid.
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.Token.TTL = ttl
	}
}

// WithIssuer sets the iss claim written to and required in tokens.
func WithIssuer(issuer string) Option {
	return func(c *Config) {
		c.Token.Issuer = issuer
	}
}

// WithBcryptCost sets the bcrypt work factor for new password hashes.
func WithBcryptCost(cost int) Option {
	return func(c *Config) {
		c.Password.BcryptCost = cost
	}
}

// WithStore injects a ready store, bypassing the Store settings.
// The App does not close an injected store.
func WithStore(s store.Store) Option {
	return func(c *Config) {
		c.store = s
	}
}

// WithStoreKind selects a backend that New opens from the Store settings.
func WithStoreKind(kind StoreKind) Option {
	return func(c *Config) {
		c.Store.Kind = kind
	}
}

// WithAutoMigrate enables or disables migration when the App is created.
func WithAutoMigrate(enabled bool) Option {
	return func(c *Config) {
		c.Store.AutoMigrate = enabled
	}
}

// WithLogger sets the logger for warnings and internal errors.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithMaxDepth limits GraphQL query nesting. Zero disables the limit.
func WithMaxDepth(depth int) Option {
	return func(c *Config) {
		c.GraphQL.MaxDepth = depth
	}
}

// WithMaxParallelism limits concurrently resolved fields per request.
func WithMaxParallelism(n int) Option {
	return func(c *Config) {
		c.GraphQL.MaxParallelism = n
	}
}

// WithDefaultWorkspace sets the title and color of the workspace created at signup.
func WithDefaultWorkspace(title, color string) Option {
	return func(c *Config) {
		c.Workspace.DefaultTitle = title
		c.Workspace.DefaultColor = color
	}
}

// WithHeaderName sets the request header carrying the bearer token.
func WithHeaderName(name string) Option {
	return func(c *Config) {
		c.HTTP.HeaderName = name
	}
}

// WithRouter selects the HTTP framework used by the server command.
func WithRouter(r Router) Option {
	return func(c *Config) {
		c.HTTP.Router = r
	}
}
