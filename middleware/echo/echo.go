// Package echo mounts the workspaces endpoints on an Echo server.
package echo

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/aloks98/workspaces/middleware"
)

// Config holds Echo-specific middleware configuration.
type Config struct {
	// TokenExtractor extracts the credential from the Echo context.
	// Defaults to the raw Authorization header value.
	TokenExtractor TokenExtractor
}

// TokenExtractor extracts a credential from an Echo context.
type TokenExtractor func(c echo.Context) string

// DefaultConfig returns a default Echo middleware configuration.
func DefaultConfig() *Config {
	return &Config{
		TokenExtractor: ExtractFromHeader("Authorization"),
	}
}

// ExtractFromHeader creates a token extractor that returns a header value.
func ExtractFromHeader(header string) TokenExtractor {
	return func(c echo.Context) string {
		return c.Request().Header.Get(header)
	}
}

// Session creates an Echo middleware that attaches the request session
// to the underlying request context.
func Session(b *middleware.Builder, cfg *Config) echo.MiddlewareFunc {
	if cfg == nil || cfg.TokenExtractor == nil {
		cfg = DefaultConfig()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			sess := b.Session(cfg.TokenExtractor(c))
			c.SetRequest(req.WithContext(middleware.WithSession(req.Context(), sess)))
			c.Set("user_id", sess.UserID)
			return next(c)
		}
	}
}

// UserID returns the caller's user ID from the Echo context.
func UserID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok {
		return v
	}
	return ""
}

// NewServer creates an Echo instance serving ep.
func NewServer(b *middleware.Builder, ep middleware.Endpoints, cfg *Config, logRequests bool) *echo.Echo {
	ep = ep.WithDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestID())
	if logRequests {
		e.Use(echomw.Logger())
	}
	e.Use(echomw.Recover())

	e.GET(ep.HealthPath, echo.WrapHandler(ep.Health))

	g := e.Group("", Session(b, cfg))
	g.POST(ep.GraphQLPath, echo.WrapHandler(ep.GraphQL))

	return e
}
