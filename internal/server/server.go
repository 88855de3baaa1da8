// Package server exposes the matching engine over HTTP.
package server

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-matcher/internal/filtering"
	"github.com/spigell/vacancy-matcher/internal/logger"
	"github.com/spigell/vacancy-matcher/internal/matching"
)

const (
	DefaultListen      = ":5000"
	DefaultCORSOrigins = "*"

	requestIDKey = "requestid"
)

type Config struct {
	Listen      string
	CORSOrigins string
}

// FiltersFactory builds the post-ranking steps for one request. It may be nil.
type FiltersFactory func(resume string) *filtering.Filtering

type Server struct {
	app     *fiber.App
	config  Config
	engine  *matching.Engine
	filters FiltersFactory
	logger  *zap.Logger
}

func New(engine *matching.Engine, filters FiltersFactory, cfg Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if strings.TrimSpace(cfg.Listen) == "" {
		cfg.Listen = DefaultListen
	}
	if strings.TrimSpace(cfg.CORSOrigins) == "" {
		cfg.CORSOrigins = DefaultCORSOrigins
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ErrorHandler:          errorHandler(log),
		}),
		config:  cfg,
		engine:  engine,
		filters: filters,
		logger:  log,
	}

	s.app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions}, ","),
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	s.register()

	return s
}

func (s *Server) register() {
	s.app.Get("/health", s.health)
	s.app.Post("/aplicar", s.apply)
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("listen", s.config.Listen))
		errCh <- s.app.Listen(s.config.Listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
		return s.app.Shutdown()
	}
}

func (s *Server) requestLogger(c *fiber.Ctx) *zap.Logger {
	id, _ := c.Locals(requestIDKey).(string)
	return logger.WithRequest(s.logger, id, c.IP())
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		return errorJSON(c, status, err.Error())
	}
}
