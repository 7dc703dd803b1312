package router

import (
	"github.com/google/wire"

	"github.com/citypress/newsroom/internal/newsroom/service/media"
	"github.com/citypress/newsroom/pkg/http"
	"github.com/citypress/newsroom/pkg/shutdown"
)

// ProviderSet provides the router and binds the media services it drives
var ProviderSet = wire.NewSet(
	ProvideRouter,
	wire.Bind(new(Delivery), new(*media.DeliveryService)),
	wire.Bind(new(Library), new(*media.LibraryService)),
)

func ProvideRouter(httpConf http.Http, delivery Delivery, library Library, shutdownMgr *shutdown.Manager) *Router {
	return NewRouter(httpConf, delivery, library, shutdownMgr)
}
