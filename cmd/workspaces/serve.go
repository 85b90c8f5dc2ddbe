package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/aloks98/workspaces"
	chiadapter "github.com/aloks98/workspaces/middleware/chi"
	echoadapter "github.com/aloks98/workspaces/middleware/echo"
	fiberadapter "github.com/aloks98/workspaces/middleware/fiber"
	ginadapter "github.com/aloks98/workspaces/middleware/gin"
)

func newServeCmd(load func() (*workspaces.Config, error)) *cobra.Command {
	var (
		router  string
		port    int
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the GraphQL API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("router") {
				cfg.HTTP.Router = workspaces.Router(router)
			}
			if flags.Changed("port") {
				cfg.HTTP.Port = port
			}
			if flags.Changed("migrate") {
				cfg.Store.AutoMigrate = migrate
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&router, "router", string(workspaces.RouterChi), "HTTP router: chi|echo|gin|fiber")
	cmd.Flags().IntVarP(&port, "port", "p", workspaces.DefaultPort, "Listen port")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Create the store schema before serving")
	return cmd
}

func serve(ctx context.Context, cfg *workspaces.Config) error {
	app, err := workspaces.NewWithConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv, err := newServer(app)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[workspaces] serving %s store on http://localhost%s/graphql (%s)", cfg.Store.Kind, cfg.Addr(), cfg.HTTP.Router)
		errCh <- srv.start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("[workspaces] shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// server hides the difference between net/http and Fiber lifecycles.
type server interface {
	start() error
	shutdown(ctx context.Context) error
}

type httpServer struct {
	srv *http.Server
}

func (s *httpServer) start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *httpServer) shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type fiberServer struct {
	app  *fiber.App
	addr string
}

func (s *fiberServer) start() error {
	return s.app.Listen(s.addr)
}

func (s *fiberServer) shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// newServer mounts the App's endpoints on the configured router.
func newServer(app *workspaces.App) (server, error) {
	cfg := app.Config()
	b, ep, logRequests := app.Builder(), app.Endpoints(), cfg.HTTP.LogRequests

	var h http.Handler
	switch cfg.HTTP.Router {
	case workspaces.RouterChi:
		h = chiadapter.NewRouter(b, ep, logRequests)
	case workspaces.RouterEcho:
		h = echoadapter.NewServer(b, ep, &echoadapter.Config{
			TokenExtractor: echoadapter.ExtractFromHeader(cfg.HTTP.HeaderName),
		}, logRequests)
	case workspaces.RouterGin:
		h = ginadapter.NewEngine(b, ep, &ginadapter.Config{
			TokenExtractor: ginadapter.ExtractFromHeader(cfg.HTTP.HeaderName),
		}, logRequests)
	case workspaces.RouterFiber:
		return &fiberServer{app: fiberadapter.NewApp(b, ep, logRequests), addr: cfg.Addr()}, nil
	default:
		return nil, fmt.Errorf("%w: unknown router %q", workspaces.ErrConfigInvalid, cfg.HTTP.Router)
	}

	return &httpServer{srv: &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}}, nil
}
