package router

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/citypress/newsroom/internal/newsroom/service/media"
	"github.com/citypress/newsroom/pkg/http"
	"github.com/citypress/newsroom/pkg/log"
)

// StatusClientClosedRequest answers requests the client abandoned mid-resolution.
const StatusClientClosedRequest = 499

const HeaderMediaRendition = "X-Media-Rendition"

func (rt *Router) mediaRouter(r fiber.Router) {
	r.Get("/media/:id", rt.serveMedia) // GET /media/:id?size=S - stream the original or a preview
}

func (rt *Router) serveMedia(c *fiber.Ctx) error {
	res, err := rt.Delivery.Open(c.UserContext(), media.Request{
		AssetID: c.Params("id"),
		Size:    c.Query("size"),
		Range:   c.Get(fiber.HeaderRange),
	})
	if err != nil {
		return mediaError(c, err)
	}

	c.Status(res.Status)
	c.Set(fiber.HeaderContentType, res.ContentType)
	c.Set(fiber.HeaderCacheControl, res.CacheControl)
	c.Set(fiber.HeaderContentDisposition, "inline")
	c.Set(HeaderMediaRendition, res.Rendition)
	if res.ContentRange != "" {
		c.Set(fiber.HeaderContentRange, res.ContentRange)
	}
	if res.AcceptRanges != "" {
		c.Set(fiber.HeaderAcceptRanges, res.AcceptRanges)
	}

	// fasthttp closes the stream once it has been written out
	c.Context().SetBodyStream(res.Body, int(res.ContentLength))
	return nil
}

func mediaError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, media.ErrNotFound):
		return http.WithRepErrStatus(c, fiber.StatusNotFound, http.NotFound, "")
	case errors.Is(err, media.ErrPreviewNotSupported):
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.PreviewUnsupported, "")
	case errors.Is(err, context.Canceled):
		// fiber's user context is not tied to the connection, so this only
		// fires when a caller-supplied context was cancelled. A client that
		// hangs up mid-stream surfaces as a failed body write instead.
		return c.SendStatus(StatusClientClosedRequest)
	case errors.Is(err, media.ErrUpstreamError):
		return http.WithRepErrStatus(c, fiber.StatusBadGateway, http.BadGateway, upstreamMsg(err))
	}
	log.WithContext(c.UserContext()).Errorw("media delivery failed", "assetId", c.Params("id"), "error", err)
	return http.WithRepErrStatus(c, fiber.StatusInternalServerError, http.InternalError, "")
}

func upstreamMsg(err error) string {
	var statusErr *media.UpstreamStatusError
	if errors.As(err, &statusErr) {
		return "upstream storage returned " + strconv.Itoa(statusErr.Status)
	}
	return http.BadGateway.Msg
}
