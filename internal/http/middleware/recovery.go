package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/snipr/internal/app/model"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 with the shared error body.
func Recovery(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.Error("panic recovered",
				zap.Error(fmt.Errorf("panic: %v", r)),
				zap.ByteString("stack", debug.Stack()),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("request_id", GetRequestID(c)),
			)

			err = c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
				Error: "internal server error",
			})
		}()

		return c.Next()
	}
}
