package router

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/pprof"

	"github.com/citypress/newsroom/internal/newsroom/model"
	"github.com/citypress/newsroom/internal/newsroom/service/media"
	"github.com/citypress/newsroom/pkg/http"
	"github.com/citypress/newsroom/pkg/http/middleware"
	"github.com/citypress/newsroom/pkg/shutdown"
	"github.com/citypress/newsroom/pkg/version"
)

/**
 * @file: router.go
 * @description: setup router
 *  		     public media delivery plus the admin api
 */

// Delivery opens media streams for the public endpoint.
type Delivery interface {
	Open(ctx context.Context, req media.Request) (*media.Result, error)
}

// Library manages assets for the admin api.
type Library interface {
	Upload(ctx context.Context, in media.UploadInput) (*model.MediaAsset, error)
	Delete(ctx context.Context, assetID string, permanently bool, actor string) error
	Move(ctx context.Context, assetID, folder, actor string) (*model.MediaAsset, error)
	Get(ctx context.Context, assetID string) (*model.MediaAsset, error)
	List(ctx context.Context, page, size int) ([]model.MediaAsset, int64, error)
	UpdateMeta(ctx context.Context, assetID string, in media.MetaInput, actor string) (*model.MediaAsset, error)
}

type Router struct {
	Http     http.Http
	Delivery Delivery
	Library  Library
	Shutdown *shutdown.Manager
}

func NewRouter(httpConf http.Http, delivery Delivery, library Library, shutdownMgr *shutdown.Manager) *Router {
	return &Router{
		Http:     httpConf,
		Delivery: delivery,
		Library:  library,
		Shutdown: shutdownMgr,
	}
}

func (rt *Router) Router() *fiber.App {
	app := http.NewApp(rt.Http)

	app.Use(
		middleware.RequestMiddleware(),
		middleware.ExceptionMiddleware,
		middleware.CorsMiddleware(),
		middleware.TraceMiddleware(),
		middleware.AccessLogMiddleware(&rt.Http),
	)

	if rt.Http.PProf {
		app.Use(pprof.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if rt.Shutdown.Draining() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("draining")
		}
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.Get())
	})

	// public delivery, raw bytes
	rt.mediaRouter(app)

	// admin api, unified json
	api := app.Group("/api/v1", middleware.UnifiedResponseMiddleware())
	auth := middleware.AuthorizationMiddleware(rt.Http.Auth)
	rt.libraryRouter(api, auth)

	return app
}
