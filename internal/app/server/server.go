package server

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/snipr/internal/app/model"
	"github.com/sifan077/snipr/internal/app/service"
	"github.com/sifan077/snipr/internal/http/handler"
	"github.com/sifan077/snipr/internal/http/middleware"
	infraPostgres "github.com/sifan077/snipr/internal/infra/postgres"
	infraRedis "github.com/sifan077/snipr/internal/infra/redis"
	"github.com/sifan077/snipr/internal/infra/prometheus"
	"go.uber.org/zap"
)

// Dependencies bundles infrastructure dependencies required by the HTTP server.
// Postgres, Redis and Metrics are optional.
type Dependencies struct {
	Logger        *zap.Logger
	Postgres      *pgxpool.Pool
	Redis         *redis.Client
	Links         service.LinkService
	Metrics       *prometheus.ServiceMetrics
	PublicBaseURL string
	RateLimit     middleware.RateLimitConfig
	CORS          middleware.CORSConfig
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "snipr",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	var observer middleware.RequestObserver
	if s.deps.Metrics != nil {
		observer = s.deps.Metrics
	}

	s.app.Use(
		middleware.Recovery(s.deps.Logger),
		middleware.RequestID(),
		middleware.Logger(s.deps.Logger.Named("http"), observer),
		middleware.CORS(s.deps.CORS),
	)

	if s.deps.Redis != nil {
		s.app.Use("/api", middleware.RateLimit(s.deps.Redis, s.deps.RateLimit, s.deps.Logger))
	}
}

func (s *Server) registerRoutes() {
	handler.NewAPIHandler(handler.APIDeps{
		Logger:        s.deps.Logger,
		LinkService:   s.deps.Links,
		PublicBaseURL: s.deps.PublicBaseURL,
	}).Register(s.app)

	var observer handler.RedirectObserver
	if s.deps.Metrics != nil {
		observer = s.deps.Metrics
	}

	handler.NewRedirectHandler(handler.RedirectDeps{
		Logger:   s.deps.Logger,
		Links:    s.deps.Links,
		Observer: observer,
		Health:   handler.NewHealthHandler(s.deps.Logger, s.healthChecks()),
	}).Register(s.app)
}

func (s *Server) healthChecks() map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{}
	if pool := s.deps.Postgres; pool != nil {
		checks["postgres"] = func(ctx context.Context) error { return infraPostgres.Ping(ctx, pool) }
	}
	if rdb := s.deps.Redis; rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return infraRedis.Ping(ctx, rdb) }
	}
	return checks
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(model.ErrorResponse{Error: msg})
}
