//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/citypress/newsroom/internal/newsroom/bootstrap"
	"github.com/citypress/newsroom/internal/newsroom/config"
	"github.com/citypress/newsroom/internal/newsroom/repo"
	"github.com/citypress/newsroom/internal/newsroom/router"
	"github.com/citypress/newsroom/internal/newsroom/service/media"
	"github.com/citypress/newsroom/pkg/cache"
	"github.com/citypress/newsroom/pkg/clouddisk"
	"github.com/citypress/newsroom/pkg/database"
	"github.com/citypress/newsroom/pkg/log"
	"github.com/citypress/newsroom/pkg/metrics"
	"github.com/citypress/newsroom/pkg/shutdown"
	"github.com/citypress/newsroom/pkg/trace"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// config
		config.ProviderSet,
		// infrastructure
		log.ProviderSet,
		database.ProviderSet,
		cache.ProviderSet,
		clouddisk.ProviderSet,
		metrics.ProviderSet,
		trace.ProviderSet,
		shutdown.ProviderSet,
		// repositories
		repo.ProviderSet,
		// services
		media.ProviderSet,
		// router
		router.ProviderSet,
		// app
		bootstrap.NewApp,
	))
}
