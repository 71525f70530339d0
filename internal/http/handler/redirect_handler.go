package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/snipr/internal/app/model"
	"github.com/sifan077/snipr/internal/app/repository"
	"github.com/sifan077/snipr/internal/app/service"
	"github.com/sifan077/snipr/internal/http/view"
	"go.uber.org/zap"
)

const maxCodeLength = 64

// Redirect outcomes.
const (
	RedirectFound   = "found"
	RedirectMissing = "missing"
	RedirectExpired = "expired"
)

// RedirectObserver counts redirect outcomes.
type RedirectObserver interface {
	ObserveRedirect(result string)
}

// RedirectDeps groups dependencies required by redirect handlers.
type RedirectDeps struct {
	Logger   *zap.Logger
	Links    service.LinkService
	Observer RedirectObserver
	Health   *HealthHandler
}

// RedirectHandler resolves short codes.
type RedirectHandler struct {
	logger   *zap.Logger
	links    service.LinkService
	observer RedirectObserver
	health   *HealthHandler
}

// NewRedirectHandler creates a redirect handler with the provided dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		logger:   logger,
		links:    deps.Links,
		observer: deps.Observer,
		health:   deps.Health,
	}
}

// Register wires redirect routes onto the provided router. It must run after every
// fixed route so /:code does not shadow them.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/", h.Root)
	if h.health != nil {
		router.Get("/health", h.health.Check)
	}
	router.Get("/:code", h.Resolve)
}

// Root is a simple endpoint so we know the service is running.
func (h *RedirectHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "snipr",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Resolve handles GET /:code
func (h *RedirectHandler) Resolve(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" || len(code) > maxCodeLength || !aliasPattern.MatchString(code) {
		h.observe(RedirectMissing)
		return h.unavailable(c, fiber.StatusNotFound, code)
	}

	link, err := h.links.ResolveLink(c.UserContext(), code)
	switch {
	case err == nil:
		h.observe(RedirectFound)
		h.logger.Debug("redirecting short link", zap.String("code", code), zap.String("target", link.URL))
		return c.Redirect(link.URL, fiber.StatusFound)
	case errors.Is(err, repository.ErrLinkNotFound):
		h.observe(RedirectMissing)
		return h.unavailable(c, fiber.StatusNotFound, code)
	case errors.Is(err, service.ErrLinkExpired):
		h.observe(RedirectExpired)
		return h.unavailable(c, fiber.StatusGone, code)
	default:
		h.logger.Error("failed to resolve link", zap.String("code", code), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{Error: "failed to resolve link"})
	}
}

func (h *RedirectHandler) observe(result string) {
	if h.observer != nil {
		h.observer.ObserveRedirect(result)
	}
}

// unavailable answers browsers with a page and API clients with JSON.
func (h *RedirectHandler) unavailable(c *fiber.Ctx, status int, code string) error {
	title, message := "Link not found", "This short link does not exist."
	if status == fiber.StatusGone {
		title, message = "Link expired", "This short link is no longer active."
	}

	if c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMETextHTML {
		html, err := view.RenderStatusPage(view.StatusPageData{Status: status, Title: title, Message: message, Code: code})
		if err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
			return c.Status(status).SendString(html)
		}
		h.logger.Warn("failed to render status page", zap.Error(err))
	}

	return c.Status(status).JSON(model.ErrorResponse{Error: message})
}
