package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/citypress/newsroom/pkg/id"
	"github.com/citypress/newsroom/pkg/log"
)

const (
	HeaderRequestID = "X-Request-Id"
	REQUEST_ID      = "request_id"
)

// RequestMiddleware propagates or assigns X-Request-Id and stores it in the
// locals and in the user context for logging.
func RequestMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestId := id.RequestID(c.Get(HeaderRequestID))
		c.Request().Header.Set(HeaderRequestID, requestId)
		c.Set(HeaderRequestID, requestId)
		c.Locals(REQUEST_ID, requestId)
		c.SetUserContext(log.ContextWithRequestID(c.UserContext(), requestId))
		return c.Next()
	}
}
