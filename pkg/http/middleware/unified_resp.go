package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/citypress/newsroom/pkg/http"
)

const (
	DETAIL    = "detail"
	OPERATION = "operation"
)

// UnifiedResponseMiddleware wraps c.Locals(DETAIL) into the unified response.
// Handlers that already wrote a body or a non-2xx status are left alone.
func UnifiedResponseMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			return nil
		}

		if detail := c.Locals(DETAIL); detail != nil {
			return http.WithRepJSON(c, detail)
		}
		if c.Locals(OPERATION) != nil {
			return http.WithRepJSON(c, nil)
		}
		return nil
	}
}
