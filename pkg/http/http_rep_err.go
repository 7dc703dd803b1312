package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

/**
 * @file: http_rep_err.go
 * @description: unified error response
 */

type ResponseErr struct {
	ErrCode int    `json:"code"`
	ErrMsg  any    `json:"errMsg"`
	Path    string `json:"path,omitempty"`
}

func WithRepErr(c *fiber.Ctx, code int, errMsg string, path string) error {
	return c.JSON(ResponseErr{
		ErrCode: code,
		ErrMsg:  errMsg,
		Path:    path,
	})
}

// WithRepErrStatus writes the unified error body with an explicit HTTP status.
func WithRepErrStatus(c *fiber.Ctx, status int, rep *Response, errMsg string) error {
	if errMsg == "" {
		errMsg = rep.Msg
	}
	return WithRepErr(c.Status(status), rep.Code, errMsg, c.Path())
}

// ErrorHandler renders errors escaping handlers, including fiber's own
// 404 and 405, in the unified error format.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	rep := InternalError
	msg := ""

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		msg = fe.Message
		switch {
		case fe.Code == fiber.StatusNotFound:
			rep = NotFound
		case fe.Code == fiber.StatusRequestEntityTooLarge:
			rep = PayloadTooLarge
		case fe.Code < fiber.StatusInternalServerError:
			rep = BadRequest
		}
	}
	return WithRepErrStatus(c, status, rep, msg)
}
