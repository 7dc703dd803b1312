package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"github.com/citypress/newsroom/pkg/http"
	"github.com/citypress/newsroom/pkg/log"
)

// ExceptionMiddleware turns a handler panic into a 500 in the unified error format.
func ExceptionMiddleware(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithContext(c.UserContext()).Errorw("panic recovered",
				"path", c.Path(),
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = http.WithRepErrStatus(c, fiber.StatusInternalServerError, http.InternalError, errorToString(r))
		}
	}()

	return c.Next()
}

func errorToString(r any) string {
	switch v := r.(type) {
	case http.ResponseErr:
		if errMsg, ok := v.ErrMsg.(string); ok {
			return errMsg
		}
		return http.InternalError.Msg
	case string:
		return v
	default:
		// never leak error internals to clients
		return http.InternalError.Msg
	}
}
