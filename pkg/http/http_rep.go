package http

import (
	"github.com/gofiber/fiber/v2"
)

/**
 * @file: http_rep.go
 * @description: unified success response
 */

type Response struct {
	Code   int    `json:"code"`
	Detail any    `json:"detail,omitempty"`
	Msg    string `json:"msg"`
}

// WithRepJSON writes the success envelope. A nil detail is omitted.
func WithRepJSON(c *fiber.Ctx, detail any) error {
	rep := *Success
	rep.Detail = detail
	return c.JSON(rep)
}
