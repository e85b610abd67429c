// Package server exposes the pipeline over HTTP. A run that stops with
// questions is kept in a session cache until it is clarified or expires.
package server

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"

	"github.com/jorge-barreto/augmentor/internal/bootstrap"
	"github.com/jorge-barreto/augmentor/internal/runner"
	"github.com/jorge-barreto/augmentor/internal/state"
)

// session is a run paused for clarification.
type session struct {
	mu     sync.Mutex
	runner *runner.Runner
	state  state.RunState
}

type Server struct {
	app       *fiber.App
	container *bootstrap.Container
	sessions  *cache.Cache
}

func New(c *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:             1 * 1024 * 1024,
		Immutable:             true,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	ttl := c.Config.SessionTTL()
	s := &Server{
		app:       app,
		container: c,
		sessions:  cache.New(ttl, time.Minute),
	}
	s.registerRoutes()
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.container.Log.Info("server", "listening", map[string]interface{}{"addr": addr})
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.health)

	runs := s.app.Group("/runs")
	runs.Get("", s.listRuns)
	runs.Post("", s.createRun)
	runs.Get(":id", s.showRun)
	runs.Post(":id/clarify", s.clarifyRun)
}
