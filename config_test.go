package workspaces

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aloks98/workspaces/graph"
	"github.com/aloks98/workspaces/store/memory"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Token.Secret != InsecureDefaultSecret {
		t.Errorf("Secret = %q, want %q", cfg.Token.Secret, InsecureDefaultSecret)
	}
	if cfg.Token.SigningMethod != "HS256" {
		t.Errorf("SigningMethod = %q, want HS256", cfg.Token.SigningMethod)
	}
	if cfg.Token.TTL != DefaultTokenTTL {
		t.Errorf("TTL = %v, want %v", cfg.Token.TTL, DefaultTokenTTL)
	}
	if cfg.Store.Kind != StoreMemory {
		t.Errorf("Store.Kind = %q, want memory", cfg.Store.Kind)
	}
	if cfg.HTTP.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.HTTP.Port, DefaultPort)
	}
	if cfg.Workspace.DefaultTitle != graph.DefaultWorkspaceTitle || cfg.Workspace.DefaultColor != graph.DefaultWorkspaceColor {
		t.Errorf("Workspace = %+v, want the graph defaults", cfg.Workspace)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"defaults", func(c *Config) {}, nil},
		{"empty secret", func(c *Config) { c.Token.Secret = "" }, ErrSecretRequired},
		{"bad signing method", func(c *Config) { c.Token.SigningMethod = "RS256" }, ErrConfigInvalid},
		{"empty signing method", func(c *Config) { c.Token.SigningMethod = "" }, nil},
		{"negative ttl", func(c *Config) { c.Token.TTL = -time.Second }, ErrConfigInvalid},
		{"negative skew", func(c *Config) { c.Token.ClockSkew = -time.Second }, ErrConfigInvalid},
		{"zero bcrypt cost", func(c *Config) { c.Password.BcryptCost = 0 }, nil},
		{"bcrypt cost too low", func(c *Config) { c.Password.BcryptCost = 2 }, ErrConfigInvalid},
		{"unknown store", func(c *Config) { c.Store.Kind = "cassandra" }, ErrStoreUnsupported},
		{"mysql without dsn", func(c *Config) { c.Store.Kind = StoreMySQL }, ErrConfigInvalid},
		{"postgres with dsn", func(c *Config) {
			c.Store.Kind = StorePostgres
			c.Store.DSN = "postgres://localhost/db"
		}, nil},
		{"redis without addr", func(c *Config) {
			c.Store.Kind = StoreRedis
			c.Store.RedisAddr = ""
		}, ErrConfigInvalid},
		{"file without path", func(c *Config) {
			c.Store.Kind = StoreFile
			c.Store.File = ""
		}, ErrConfigInvalid},
		{"injected store skips backend checks", func(c *Config) {
			c.Store.Kind = "cassandra"
			c.store = memory.New()
		}, nil},
		{"unknown router", func(c *Config) { c.HTTP.Router = "" }, ErrConfigInvalid},
		{"port out of range", func(c *Config) { c.HTTP.Port = 70000 }, ErrConfigInvalid},
		{"negative depth", func(c *Config) { c.GraphQL.MaxDepth = -1 }, ErrConfigInvalid},
		{"empty default title", func(c *Config) { c.Workspace.DefaultTitle = "" }, ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Warnings(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   int
	}{
		{"insecure default", InsecureDefaultSecret, 1},
		{"short", "abcdef", 1},
		{"long enough", "0123456789abcdef0123456789abcdef", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Token.Secret = tt.secret
			if got := len(cfg.Warnings()); got != tt.want {
				t.Errorf("len(Warnings()) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConfig_Addr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTTP.Port = 8080
	if got := cfg.Addr(); got != ":8080" {
		t.Errorf("Addr() = %q, want :8080", got)
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
token:
  secret: from-yaml
  ttl: 1h30m
store:
  kind: postgres
  dsn: postgres://user@localhost/ws
  auto_migrate: true
http:
  port: 9000
  router: gin
workspace:
  default_title: Groceries
`)

	cfg, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	if cfg.Token.Secret != "from-yaml" {
		t.Errorf("Secret = %q", cfg.Token.Secret)
	}
	if cfg.Token.TTL != 90*time.Minute {
		t.Errorf("TTL = %v, want 1h30m", cfg.Token.TTL)
	}
	if cfg.Store.Kind != StorePostgres || !cfg.Store.AutoMigrate {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.HTTP.Port != 9000 || cfg.HTTP.Router != RouterGin {
		t.Errorf("HTTP = %+v", cfg.HTTP)
	}
	if cfg.Workspace.DefaultTitle != "Groceries" {
		t.Errorf("DefaultTitle = %q", cfg.Workspace.DefaultTitle)
	}
	// Unset keys keep their defaults.
	if cfg.Workspace.DefaultColor != graph.DefaultWorkspaceColor {
		t.Errorf("DefaultColor = %q, want default", cfg.Workspace.DefaultColor)
	}
	if cfg.HTTP.HeaderName != DefaultHeaderName {
		t.Errorf("HeaderName = %q, want default", cfg.HTTP.HeaderName)
	}
}

func TestParseYAML_Empty(t *testing.T) {
	cfg, err := ParseYAML(nil)
	if err != nil {
		t.Fatalf("ParseYAML(nil) error = %v", err)
	}
	if cfg.HTTP.Port != DefaultPort {
		t.Errorf("Port = %d, want default", cfg.HTTP.Port)
	}
}

func TestParseYAML_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "token:\n  sekret: typo\n"},
		{"bad duration", "token:\n  ttl: forever\n"},
		{"bad type", "http:\n  port: [1, 2]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.data))
			if !errors.Is(err, ErrConfigInvalid) {
				t.Errorf("ParseYAML() error = %v, want ErrConfigInvalid", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspaces.yaml")
	if err := os.WriteFile(path, []byte("http:\n  port: 5000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.HTTP.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.HTTP.Port)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestConfig_FromEnv(t *testing.T) {
	t.Setenv(EnvSecret, "env-secret")
	t.Setenv(EnvPort, "7000")
	t.Setenv(EnvStore, "Redis")
	t.Setenv(EnvRedisAddr, "cache:6379")
	t.Setenv(EnvTokenTTL, "2h")
	t.Setenv(EnvRouter, "ECHO")
	t.Setenv(EnvDSN, "  ")

	cfg := DefaultConfig()
	if err := cfg.FromEnv(); err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.Token.Secret != "env-secret" {
		t.Errorf("Secret = %q", cfg.Token.Secret)
	}
	if cfg.HTTP.Port != 7000 {
		t.Errorf("Port = %d", cfg.HTTP.Port)
	}
	if cfg.Store.Kind != StoreRedis || cfg.Store.RedisAddr != "cache:6379" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Token.TTL != 2*time.Hour {
		t.Errorf("TTL = %v", cfg.Token.TTL)
	}
	if cfg.HTTP.Router != RouterEcho {
		t.Errorf("Router = %q", cfg.HTTP.Router)
	}
	if cfg.Store.DSN != "" {
		t.Errorf("blank %s should be ignored, DSN = %q", EnvDSN, cfg.Store.DSN)
	}
}

func TestConfig_FromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvPort, "eighty"},
		{EnvTokenTTL, "a week"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if err := DefaultConfig().FromEnv(); !errors.Is(err, ErrConfigInvalid) {
				t.Errorf("FromEnv() error = %v, want ErrConfigInvalid", err)
			}
		})
	}
}
