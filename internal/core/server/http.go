// Package server provides HTTP server lifecycle management for the ingestion
// API.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/groundswell/listcutter/internal/core/api"
	"github.com/groundswell/listcutter/internal/core/config"
	"go.uber.org/zap"
)

// HTTPServer manages the fiber app lifecycle.
type HTTPServer struct {
	app *fiber.App
	cfg *config.Config
}

// NewHTTPServer creates the fiber app with middleware and routes registered.
func NewHTTPServer(cfg *config.Config, svc *api.Service, log *zap.Logger) (*HTTPServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if svc == nil {
		return nil, fmt.Errorf("svc cannot be nil")
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.RequestTimeout,
		WriteTimeout:          cfg.RequestTimeout,
		BodyLimit:             cfg.MaxBodyBytes,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	grp := app.Group("/api")
	grp.Post("/external_activity_events", svc.Create)

	return &HTTPServer{app: app, cfg: cfg}, nil
}

// App exposes the fiber app for in-process testing via app.Test.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// Start binds and serves until Shutdown is called.
func (s *HTTPServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests within the context deadline.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// requestLogger logs one structured line per request.
func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)))
		return err
	}
}
