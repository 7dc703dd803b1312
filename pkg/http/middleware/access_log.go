package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/citypress/newsroom/pkg/http"
	"github.com/citypress/newsroom/pkg/log"
)

// paths probed by load balancers and scrapers, kept out of the access log
var quietPaths = []string{"/health", "/metrics", "/debug/pprof/"}

func quiet(path string) bool {
	for _, p := range quietPaths {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}

// AccessLogMiddleware writes one structured entry per request. Bodies are
// never logged since media responses are streams, so bytes is the declared
// length and -1 for chunked streams.
func AccessLogMiddleware(httpConfig *http.Http) fiber.Handler {
	if httpConfig != nil && !httpConfig.AccessLog {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c *fiber.Ctx) error {
		if quiet(c.Path()) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		fields := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"bytes", c.Response().Header.ContentLength(),
			"ip", c.IP(),
		}
		if q := c.Request().URI().QueryString(); len(q) > 0 {
			fields = append(fields, "query", string(q))
		}
		if r := c.Get(fiber.HeaderRange); r != "" {
			fields = append(fields, "range", r)
		}
		if err != nil {
			fields = append(fields, "error", err.Error())
		}

		l := log.WithContext(c.UserContext())
		if status >= fiber.StatusInternalServerError {
			l.Warnw("access", fields...)
		} else {
			l.Infow("access", fields...)
		}
		return err
	}
}
