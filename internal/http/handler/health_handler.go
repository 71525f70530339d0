package handler

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler reports the status of the service's dependencies.
type HealthHandler struct {
	logger *zap.Logger
	checks map[string]HealthCheck
}

func NewHealthHandler(logger *zap.Logger, checks map[string]HealthCheck) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{logger: logger, checks: checks}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	results := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
		err := h.checks[name](ctx)
		cancel()

		if err != nil {
			status = "degraded"
			results[name] = err.Error()
			h.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		results[name] = "ok"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": results,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
