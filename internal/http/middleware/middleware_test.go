package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/snipr/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetRequestID(c)) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_, parseErr := uuid.Parse(string(body))
	assert.NoError(t, parseErr)
	assert.Equal(t, string(body), resp.Header.Get(RequestIDHeader))

	existing := uuid.NewString()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, existing)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, existing, resp.Header.Get(RequestIDHeader))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(RequestIDHeader))
}

type recordedRequest struct {
	route  string
	method string
	status int
}

type fakeObserver struct {
	samples []recordedRequest
}

func (f *fakeObserver) ObserveRequest(route, method string, status int, _ time.Duration) {
	f.samples = append(f.samples, recordedRequest{route, method, status})
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	obs := &fakeObserver{}

	app := fiber.New()
	app.Use(RequestID(), Logger(zap.New(core), obs))
	app.Get("/:code", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(model.ErrorResponse{Error: "not found"})
	})

	_, err := app.Test(httptest.NewRequest("GET", "/abc", nil))
	require.NoError(t, err)

	require.Len(t, obs.samples, 1)
	assert.Equal(t, recordedRequest{"/:code", "GET", 404}, obs.samples[0])

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/abc", fields["path"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)

	app := fiber.New()
	app.Use(Recovery(zap.New(core)))
	app.Get("/", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowOrigins: []string{"https://app.example.com/"}}))
	app.Post("/api/shorten", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	preflight := httptest.NewRequest("OPTIONS", "/api/shorten", nil)
	preflight.Header.Set("Origin", "https://app.example.com")
	resp, err := app.Test(preflight)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	foreign := httptest.NewRequest("OPTIONS", "/api/shorten", nil)
	foreign.Header.Set("Origin", "https://evil.example.com")
	resp, err = app.Test(foreign)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	open := fiber.New()
	open.Use(CORS(CORSConfig{}))
	open.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	resp, err = open.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	app := fiber.New()
	app.Use(RateLimit(client, RateLimitConfig{MaxRequests: 2, Window: time.Minute, KeyPrefix: "test"}, zap.NewNop()))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	mr.FastForward(time.Minute + time.Second)

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	app := fiber.New()
	app.Use(RateLimit(client, RateLimitConfig{MaxRequests: 1}, zap.NewNop()))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
