package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig lists the origins allowed to call the API from a browser.
// An empty list allows any origin.
type CORSConfig struct {
	AllowOrigins []string
}

// CORS answers preflight requests and decorates responses for the browser client.
func CORS(cfg CORSConfig) fiber.Handler {
	allowed := make(map[string]bool, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)

		switch {
		case len(allowed) == 0:
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		case allowed[origin]:
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			c.Vary(fiber.HeaderOrigin)
		default:
			if c.Method() == fiber.MethodOptions {
				return c.SendStatus(fiber.StatusForbidden)
			}
			return c.Next()
		}

		c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST, OPTIONS")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "Origin, Content-Type, Accept, "+RequestIDHeader)
		c.Set(fiber.HeaderAccessControlExposeHeaders, RequestIDHeader+", X-RateLimit-Limit, X-RateLimit-Remaining")
		c.Set(fiber.HeaderAccessControlMaxAge, "86400")

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}
