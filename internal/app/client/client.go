package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sifan077/snipr/config"
	"github.com/sifan077/snipr/internal/app/model"
	"github.com/sifan077/snipr/internal/app/workflow"
	"go.uber.org/zap"
)

const (
	defaultPath     = "/api/shorten"
	requestIDHeader = "X-Request-ID"
	userAgent       = "snipr"
)

var errEmptyShortURL = errors.New("response has no shortUrl")

// Client calls the short-link creation service over HTTP.
type Client struct {
	endpoint string
	timeout  time.Duration
	logger   *zap.Logger
}

// New builds a client for cfg. A zero timeout waits for the service indefinitely.
func New(cfg config.ServiceConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("client: service base url is required")
	}
	if !workflow.IsValidURL(base) {
		return nil, fmt.Errorf("client: invalid service base url %q", cfg.BaseURL)
	}

	path := cfg.Path
	if path == "" {
		path = defaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return &Client{
		endpoint: base + path,
		timeout:  cfg.Timeout,
		logger:   logger.Named("client"),
	}, nil
}

// Endpoint is the full URL of the shorten call.
func (c *Client) Endpoint() string { return c.endpoint }

type response struct {
	status int
	body   []byte
	err    error
}

// Shorten posts req and returns the short URL. Non-2xx and malformed responses
// yield *workflow.ServiceError, transport failures *workflow.NetworkError.
func (c *Client) Shorten(ctx context.Context, req model.LinkRequest) (string, error) {
	requestID := uuid.NewString()

	agent := fiber.Post(c.endpoint).
		JSON(req).
		UserAgent(userAgent).
		Set(requestIDHeader, requestID).
		Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}

	done := make(chan response, 1)
	go func() {
		status, body, errs := agent.Bytes()
		done <- response{status: status, body: body, err: errors.Join(errs...)}
	}()

	var res response
	select {
	case <-ctx.Done():
		return "", &workflow.NetworkError{Err: ctx.Err()}
	case res = <-done:
	}

	if res.err != nil {
		c.logger.Warn("shorten request failed", zap.String("request_id", requestID), zap.Error(res.err))
		return "", &workflow.NetworkError{Err: res.err}
	}

	c.logger.Debug("shorten response",
		zap.String("request_id", requestID),
		zap.Int("status", res.status),
		zap.Int("bytes", len(res.body)),
	)

	return decode(res.status, res.body)
}

func decode(status int, body []byte) (string, error) {
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		var errResp model.ErrorResponse
		// A non-JSON error body still counts as a service error without a message.
		_ = json.Unmarshal(body, &errResp)
		return "", &workflow.ServiceError{StatusCode: status, Message: strings.TrimSpace(errResp.Error)}
	}

	var out model.ShortenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &workflow.ServiceError{StatusCode: status, Message: ""}
	}
	if strings.TrimSpace(out.ShortURL) == "" {
		return "", fmt.Errorf("%w: %w", &workflow.ServiceError{StatusCode: status}, errEmptyShortURL)
	}
	return out.ShortURL, nil
}
