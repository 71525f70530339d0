package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/snipr/internal/app/model"
	"github.com/sifan077/snipr/internal/app/service"
	"go.uber.org/zap"
)

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger        *zap.Logger
	LinkService   service.LinkService
	PublicBaseURL string
}

// APIHandler implements the link creation endpoint.
type APIHandler struct {
	logger      *zap.Logger
	linkService service.LinkService
	publicBase  string
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:      logger,
		linkService: deps.LinkService,
		publicBase:  strings.TrimRight(deps.PublicBaseURL, "/"),
	}
}

// Register wires API routes onto the provided router.
func (h *APIHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	api.Post("/shorten", h.Shorten)
}

// Shorten handles POST /api/shorten
func (h *APIHandler) Shorten(c *fiber.Ctx) error {
	var req shortenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	req.URL = strings.TrimSpace(req.URL)
	req.CustomAlias = strings.TrimSpace(req.CustomAlias)
	if msg := validateRequest(req); msg != "" {
		return badRequest(c, msg)
	}

	link, err := h.linkService.CreateLink(c.UserContext(), model.LinkRequest{
		URL:              req.URL,
		CustomAlias:      req.CustomAlias,
		ExpirationOption: model.ExpirationOption(req.ExpirationOption),
		ExpirationDate:   req.ExpirationDate,
	})
	switch {
	case err == nil:
	case errors.Is(err, service.ErrAliasTaken):
		return c.Status(fiber.StatusConflict).JSON(model.ErrorResponse{Error: service.ErrAliasTaken.Error()})
	case errors.Is(err, service.ErrInvalidExpiration):
		return badRequest(c, "expirationDate must be a YYYY-MM-DD date from tomorrow on")
	default:
		h.logger.Error("failed to create link", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{Error: "failed to create short link"})
	}

	return c.Status(fiber.StatusCreated).JSON(model.ShortenResponse{
		ShortURL:  h.shortURL(c, link.Code),
		Code:      link.Code,
		ExpiresAt: link.ExpiresAt,
	})
}

func (h *APIHandler) shortURL(c *fiber.Ctx, code string) string {
	base := h.publicBase
	if base == "" {
		base = c.BaseURL()
	}
	return base + "/" + code
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{Error: msg})
}
