package workspaces

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/aloks98/workspaces/graph"
	"github.com/aloks98/workspaces/password"
	"github.com/aloks98/workspaces/store"
)

// StoreKind selects the persistence backend.
type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StorePostgres StoreKind = "postgres"
	StoreMySQL    StoreKind = "mysql"
	StoreRedis    StoreKind = "redis"
	StoreFile     StoreKind = "file"
)

// Router selects the HTTP framework used by the server command.
type Router string

const (
	RouterChi   Router = "chi"
	RouterEcho  Router = "echo"
	RouterGin   Router = "gin"
	RouterFiber Router = "fiber"
)

// Default configuration values.
const (
	// InsecureDefaultSecret is used when SECRET is unset. It only suits
	// local development; New logs a warning whenever it is in effect.
	InsecureDefaultSecret = "1234"

	DefaultTokenTTL        = 7 * 24 * time.Hour
	DefaultClockSkew       = 30 * time.Second
	DefaultPort            = 4000
	DefaultHeaderName      = "Authorization"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxDepth        = 15
	DefaultRedisAddr       = "localhost:6379"
	DefaultDataFile        = "workspaces.json"

	// MinSecretLength is the length below which New warns about the secret.
	MinSecretLength = 32
)

// Config holds all configuration for an App.
type Config struct {
	Token     TokenConfig     `yaml:"token"`
	Password  PasswordConfig  `yaml:"password"`
	Store     StoreConfig     `yaml:"store"`
	HTTP      HTTPConfig      `yaml:"http"`
	GraphQL   GraphQLConfig   `yaml:"graphql"`
	Workspace WorkspaceConfig `yaml:"workspace"`

	// Set through options only.
	store  store.Store
	logger Logger
}

// TokenConfig configures bearer token signing.
type TokenConfig struct {
	// Secret is the HMAC key used to sign and verify tokens.
	Secret string `yaml:"secret"`

	// SigningMethod is HS256, HS384 or HS512.
	SigningMethod string `yaml:"signing_method"`

	// TTL is how long issued tokens are valid.
	TTL time.Duration `yaml:"ttl"`

	// Issuer, when set, is written to and required in every token.
	Issuer string `yaml:"issuer"`

	// ClockSkew is the leeway applied to time-based claims.
	ClockSkew time.Duration `yaml:"clock_skew"`
}

// PasswordConfig configures password hashing.
type PasswordConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

// StoreConfig selects and configures the backend.
type StoreConfig struct {
	Kind StoreKind `yaml:"kind"`

	// DSN is used by the postgres and mysql kinds.
	DSN         string `yaml:"dsn"`
	TablePrefix string `yaml:"table_prefix"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`

	// File is the snapshot path of the file kind.
	File string `yaml:"file"`

	// AutoMigrate runs Migrate when the App is created.
	AutoMigrate bool `yaml:"auto_migrate"`
}

// HTTPConfig configures the server command.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	Router          Router        `yaml:"router"`
	HeaderName      string        `yaml:"header_name"`
	LogRequests     bool          `yaml:"log_requests"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GraphQLConfig configures query execution limits.
type GraphQLConfig struct {
	MaxDepth       int `yaml:"max_depth"`
	MaxParallelism int `yaml:"max_parallelism"`
}

// WorkspaceConfig describes the workspace created for every new user.
type WorkspaceConfig struct {
	DefaultTitle string `yaml:"default_title"`
	DefaultColor string `yaml:"default_color"`
}

// DefaultConfig creates a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Token: TokenConfig{
			Secret:        InsecureDefaultSecret,
			SigningMethod: "HS256",
			TTL:           DefaultTokenTTL,
			ClockSkew:     DefaultClockSkew,
		},
		Password: PasswordConfig{
			BcryptCost: password.DefaultCost,
		},
		Store: StoreConfig{
			Kind:      StoreMemory,
			RedisAddr: DefaultRedisAddr,
			File:      DefaultDataFile,
		},
		HTTP: HTTPConfig{
			Port:            DefaultPort,
			Router:          RouterChi,
			HeaderName:      DefaultHeaderName,
			LogRequests:     true,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		GraphQL: GraphQLConfig{
			MaxDepth: DefaultMaxDepth,
		},
		Workspace: WorkspaceConfig{
			DefaultTitle: graph.DefaultWorkspaceTitle,
			DefaultColor: graph.DefaultWorkspaceColor,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Token.Secret == "" {
		return ErrSecretRequired
	}
	switch c.Token.SigningMethod {
	case "", "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("%w: unsupported signing method: %s", ErrConfigInvalid, c.Token.SigningMethod)
	}
	if c.Token.TTL <= 0 {
		return fmt.Errorf("%w: token TTL must be positive", ErrConfigInvalid)
	}
	if c.Token.ClockSkew < 0 {
		return fmt.Errorf("%w: clock skew cannot be negative", ErrConfigInvalid)
	}

	if cost := c.Password.BcryptCost; cost != 0 && (cost < bcrypt.MinCost || cost > bcrypt.MaxCost) {
		return fmt.Errorf("%w: bcrypt cost must be between %d and %d", ErrConfigInvalid, bcrypt.MinCost, bcrypt.MaxCost)
	}

	// An injected store makes the backend settings irrelevant.
	if c.store == nil {
		switch c.Store.Kind {
		case StoreMemory:
		case StorePostgres, StoreMySQL:
			if c.Store.DSN == "" {
				return fmt.Errorf("%w: %s store requires a DSN", ErrConfigInvalid, c.Store.Kind)
			}
		case StoreRedis:
			if c.Store.RedisAddr == "" {
				return fmt.Errorf("%w: redis store requires an address", ErrConfigInvalid)
			}
		case StoreFile:
			if c.Store.File == "" {
				return fmt.Errorf("%w: file store requires a path", ErrConfigInvalid)
			}
		default:
			return fmt.Errorf("%w: %q", ErrStoreUnsupported, c.Store.Kind)
		}
	}

	switch c.HTTP.Router {
	case RouterChi, RouterEcho, RouterGin, RouterFiber:
	default:
		return fmt.Errorf("%w: unknown router %q", ErrConfigInvalid, c.HTTP.Router)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrConfigInvalid, c.HTTP.Port)
	}
	if c.HTTP.HeaderName == "" {
		return fmt.Errorf("%w: header name cannot be empty", ErrConfigInvalid)
	}

	if c.GraphQL.MaxDepth < 0 || c.GraphQL.MaxParallelism < 0 {
		return fmt.Errorf("%w: graphql limits cannot be negative", ErrConfigInvalid)
	}
	if c.Workspace.DefaultTitle == "" {
		return fmt.Errorf("%w: default workspace title cannot be empty", ErrConfigInvalid)
	}

	return nil
}

// Warnings returns non-fatal problems with the configuration.
func (c *Config) Warnings() []string {
	var warnings []string
	switch {
	case c.Token.Secret == InsecureDefaultSecret:
		warnings = append(warnings, "token secret is the insecure default; set SECRET before exposing the server")
	case len(c.Token.Secret) < MinSecretLength:
		warnings = append(warnings, fmt.Sprintf("token secret is shorter than %d characters", MinSecretLength))
	}
	return warnings
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.HTTP.Port)
}

// LoadFile reads a YAML file over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes YAML over the defaults. Unknown keys are rejected.
func ParseYAML(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document decodes to io.EOF and leaves the defaults.
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return cfg, nil
}

// Environment variables read by FromEnv.
const (
	EnvSecret    = "SECRET"
	EnvPort      = "PORT"
	EnvStore     = "WORKSPACES_STORE"
	EnvDSN       = "WORKSPACES_DSN"
	EnvRedisAddr = "WORKSPACES_REDIS_ADDR"
	EnvFile      = "WORKSPACES_FILE"
	EnvTokenTTL  = "WORKSPACES_TOKEN_TTL"
	EnvRouter    = "WORKSPACES_ROUTER"
)

// FromEnv overlays set environment variables onto c.
func (c *Config) FromEnv() error {
	if v, ok := lookupEnv(EnvSecret); ok {
		c.Token.Secret = v
	}
	if v, ok := lookupEnv(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrConfigInvalid, EnvPort, v)
		}
		c.HTTP.Port = port
	}
	if v, ok := lookupEnv(EnvStore); ok {
		c.Store.Kind = StoreKind(strings.ToLower(v))
	}
	if v, ok := lookupEnv(EnvDSN); ok {
		c.Store.DSN = v
	}
	if v, ok := lookupEnv(EnvRedisAddr); ok {
		c.Store.RedisAddr = v
	}
	if v, ok := lookupEnv(EnvFile); ok {
		c.Store.File = v
	}
	if v, ok := lookupEnv(EnvTokenTTL); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrConfigInvalid, EnvTokenTTL, v, err)
		}
		c.Token.TTL = ttl
	}
	if v, ok := lookupEnv(EnvRouter); ok {
		c.HTTP.Router = Router(strings.ToLower(v))
	}
	return nil
}

// lookupEnv treats empty values as unset.
func lookupEnv(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}
