package router

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/citypress/newsroom/internal/newsroom/model"
	"github.com/citypress/newsroom/internal/newsroom/service/media"
	"github.com/citypress/newsroom/pkg/clouddisk"
	"github.com/citypress/newsroom/pkg/http"
	"github.com/citypress/newsroom/pkg/http/middleware"
	"github.com/citypress/newsroom/pkg/log"
)

/**
 * @file: router_library.go
 * @description: admin media library router
 */

type moveRequest struct {
	Folder string `json:"folder"`
}

type assetPage struct {
	Items []model.MediaAsset `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
}

func (rt *Router) libraryRouter(r fiber.Router, auth fiber.Handler) {
	mediaGroup := r.Group("/media", auth)
	{
		mediaGroup.Post("/", rt.uploadMedia)         // POST /api/v1/media - multipart upload
		mediaGroup.Get("/", rt.listMedia)            // GET /api/v1/media?page=&size= - list assets
		mediaGroup.Get("/:id", rt.getMedia)          // GET /api/v1/media/:id - get asset
		mediaGroup.Patch("/:id", rt.updateMediaMeta) // PATCH /api/v1/media/:id - edit title, alt, caption
		mediaGroup.Post("/:id/move", rt.moveMedia)   // POST /api/v1/media/:id/move - move to folder
		mediaGroup.Delete("/:id", rt.deleteMedia)    // DELETE /api/v1/media/:id?permanently=true - delete
	}
}

func (rt *Router) uploadMedia(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.BadRequest, "file is required")
	}
	f, err := file.Open()
	if err != nil {
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.BadRequest, err.Error())
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.BadRequest, err.Error())
	}

	asset, err := rt.Library.Upload(c.UserContext(), media.UploadInput{
		Filename: file.Filename,
		Mime:     file.Header.Get(fiber.HeaderContentType),
		Data:     data,
		Title:    c.FormValue("title"),
		Alt:      c.FormValue("alt"),
		Caption:  c.FormValue("caption"),
		Actor:    middleware.Actor(c),
	})
	if err != nil {
		return libraryError(c, err)
	}

	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, asset)
	return nil
}

func (rt *Router) listMedia(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", media.DefaultPageSize)

	items, total, err := rt.Library.List(c.UserContext(), page, size)
	if err != nil {
		return libraryError(c, err)
	}

	c.Locals(middleware.DETAIL, assetPage{Items: items, Total: total, Page: page, Size: size})
	return nil
}

func (rt *Router) getMedia(c *fiber.Ctx) error {
	asset, err := rt.Library.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return libraryError(c, err)
	}
	c.Locals(middleware.DETAIL, asset)
	return nil
}

func (rt *Router) updateMediaMeta(c *fiber.Ctx) error {
	var in media.MetaInput
	if err := c.BodyParser(&in); err != nil {
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed, "")
	}

	asset, err := rt.Library.UpdateMeta(c.UserContext(), c.Params("id"), in, middleware.Actor(c))
	if err != nil {
		return libraryError(c, err)
	}
	c.Locals(middleware.DETAIL, asset)
	return nil
}

func (rt *Router) moveMedia(c *fiber.Ctx) error {
	var in moveRequest
	if err := c.BodyParser(&in); err != nil {
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed, "")
	}
	if in.Folder == "" {
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.BadRequest, "folder is required")
	}

	asset, err := rt.Library.Move(c.UserContext(), c.Params("id"), in.Folder, middleware.Actor(c))
	if err != nil {
		return libraryError(c, err)
	}
	c.Locals(middleware.DETAIL, asset)
	return nil
}

func (rt *Router) deleteMedia(c *fiber.Ctx) error {
	permanently := c.QueryBool("permanently", false)
	if err := rt.Library.Delete(c.UserContext(), c.Params("id"), permanently, middleware.Actor(c)); err != nil {
		return libraryError(c, err)
	}
	c.Locals(middleware.OPERATION, "delete media")
	return nil
}

func libraryError(c *fiber.Ctx, err error) error {
	var apiErr *clouddisk.APIError
	switch {
	case errors.Is(err, media.ErrNotFound):
		return http.WithRepErrStatus(c, fiber.StatusNotFound, http.NotFound, "")
	case errors.Is(err, media.ErrInvalidUpload), errors.Is(err, clouddisk.ErrInvalidPath):
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.BadRequest, err.Error())
	case errors.As(err, &apiErr),
		errors.Is(err, clouddisk.ErrUploadFailed),
		errors.Is(err, clouddisk.ErrOperationTimeout),
		errors.Is(err, clouddisk.ErrOperationFailed),
		errors.Is(err, clouddisk.ErrUnavailable):
		return http.WithRepErrStatus(c, fiber.StatusBadGateway, http.BadGateway, err.Error())
	}
	log.WithContext(c.UserContext()).Errorw("media library request failed", "path", c.Path(), "error", err)
	return http.WithRepErrStatus(c, fiber.StatusInternalServerError, http.InternalError, "")
}
