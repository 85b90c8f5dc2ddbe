// Package fiber mounts the workspaces endpoints on a Fiber app.
// The GraphQL handler is a net/http handler, so requests are bridged
// through fasthttpadaptor and the session is built on the net/http side.
package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/aloks98/workspaces/middleware"
)

// Handler converts a net/http handler wrapped with the session builder
// into a Fiber handler.
func Handler(b *middleware.Builder, h http.Handler) fiber.Handler {
	return Wrap(b.Handler(h))
}

// Wrap converts a plain net/http handler into a Fiber handler.
func Wrap(h http.Handler) fiber.Handler {
	fh := fasthttpadaptor.NewFastHTTPHandler(h)
	return func(c *fiber.Ctx) error {
		fh(c.Context())
		return nil
	}
}

// Session creates a Fiber middleware that exposes the caller's user ID
// in Locals for native Fiber handlers.
func Session(b *middleware.Builder, header string) fiber.Handler {
	if header == "" {
		header = fiber.HeaderAuthorization
	}
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", b.Session(c.Get(header)).UserID)
		return c.Next()
	}
}

// UserID returns the caller's user ID from Fiber Locals.
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}

// NewApp creates a Fiber app serving ep.
func NewApp(b *middleware.Builder, ep middleware.Endpoints, logRequests bool) *fiber.App {
	ep = ep.WithDefaults()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	if logRequests {
		app.Use(fiberlogger.New())
	}
	app.Use(recover.New())

	app.Get(ep.HealthPath, Wrap(ep.Health))

	app.Post(ep.GraphQLPath, Handler(b, ep.GraphQL))

	return app
}
