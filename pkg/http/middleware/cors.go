package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

var (
	allowMethods  = "GET, HEAD, POST, PATCH, DELETE, OPTIONS"
	allowHeaders  = "Origin, X-Requested-With, Content-Type, Accept, Authorization, Range, X-Request-Id"
	exposeHeaders = "Content-Length, Content-Range, Accept-Ranges, Cache-Control, Content-Type, X-Request-Id"
)

// CorsMiddleware lets article pages on other origins embed media and lets
// players read range headers.
func CorsMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  allowMethods,
		AllowHeaders:  allowHeaders,
		ExposeHeaders: exposeHeaders,
	})
}
