// Package gin mounts the workspaces endpoints on a Gin engine.
package gin

import (
	"github.com/gin-gonic/gin"

	"github.com/aloks98/workspaces/middleware"
)

// Config holds Gin-specific middleware configuration.
type Config struct {
	// TokenExtractor extracts the credential from the Gin context.
	// Defaults to the raw Authorization header value.
	TokenExtractor TokenExtractor
}

// TokenExtractor extracts a credential from a Gin context.
type TokenExtractor func(c *gin.Context) string

// DefaultConfig returns a default Gin middleware configuration.
func DefaultConfig() *Config {
	return &Config{
		TokenExtractor: ExtractFromHeader("Authorization"),
	}
}

// ExtractFromHeader creates a token extractor that returns a header value.
func ExtractFromHeader(header string) TokenExtractor {
	return func(c *gin.Context) string {
		return c.GetHeader(header)
	}
}

// Session creates a Gin middleware that attaches the request session.
func Session(b *middleware.Builder, cfg *Config) gin.HandlerFunc {
	if cfg == nil || cfg.TokenExtractor == nil {
		cfg = DefaultConfig()
	}

	return func(c *gin.Context) {
		sess := b.Session(cfg.TokenExtractor(c))
		c.Request = c.Request.WithContext(middleware.WithSession(c.Request.Context(), sess))
		c.Set("user_id", sess.UserID)
		c.Next()
	}
}

// UserID returns the caller's user ID from the Gin context.
func UserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// NewEngine creates a Gin engine serving ep.
func NewEngine(b *middleware.Builder, ep middleware.Endpoints, cfg *Config, logRequests bool) *gin.Engine {
	ep = ep.WithDefaults()

	r := gin.New()
	if logRequests {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET(ep.HealthPath, gin.WrapH(ep.Health))

	g := r.Group("", Session(b, cfg))
	g.POST(ep.GraphQLPath, gin.WrapH(ep.GraphQL))

	return r
}
