// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/citypress/newsroom/internal/newsroom/config"
	"github.com/citypress/newsroom/internal/newsroom/router"
	"github.com/citypress/newsroom/internal/newsroom/service/media"
	"github.com/citypress/newsroom/pkg/log"
	"github.com/citypress/newsroom/pkg/metrics"
	"github.com/citypress/newsroom/pkg/shutdown"
	"github.com/citypress/newsroom/pkg/trace"
)

const traceFlushTimeout = 5 * time.Second

type App struct {
	HttpApp  *fiber.App
	Metrics  *metrics.Server
	Prewarm  *media.Prewarmer
	Shutdown *shutdown.Manager
	Logger   *log.Logger
	AppConf  *config.AppConfig
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string) (*App, func(), error)

func NewApp(
	rt *router.Router,
	logger *log.Logger,
	metricsServer *metrics.Server,
	prewarmer *media.Prewarmer,
	shutdownMgr *shutdown.Manager,
	shutdownTrace trace.Shutdown,
	appConf *config.AppConfig,
) (*App, func(), error) {
	app := &App{
		HttpApp:  rt.Router(),
		Metrics:  metricsServer,
		Prewarm:  prewarmer,
		Shutdown: shutdownMgr,
		Logger:   logger,
		AppConf:  appConf,
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), traceFlushTimeout)
		defer cancel()
		if err := shutdownTrace(ctx); err != nil {
			logger.Log.Errorw("Tracer shutdown failed", "error", err)
		}
	}

	return app, cleanup, nil
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	app, cleanup, err := initApp(configFile)
	if err != nil {
		return nil, nil, err
	}
	return app, cleanup, nil
}

// Run starts the listeners and blocks until an exit signal, then shuts down
// gracefully. In-flight media streams get Http.ShutdownTimeout to finish.
func Run(app *App, cleanup func()) {
	logger := app.Logger.Log
	httpConf := app.AppConf.Http

	if err := app.Metrics.Start(); err != nil {
		logger.Errorw("Metrics server failed to start", "error", err)
	}
	if err := app.Prewarm.Start(); err != nil {
		logger.Errorw("Href prewarm failed to start", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		sig := <-quit
		app.Shutdown.Begin(sig.String())
	}()

	go func() {
		addr := httpConf.Addr()
		logger.Infow("HTTP listener started", "address", addr, "tls", httpConf.TLS.CertFile != "")

		var err error
		if httpConf.TLS.CertFile != "" && httpConf.TLS.KeyFile != "" {
			err = app.HttpApp.ListenTLS(addr, httpConf.TLS.CertFile, httpConf.TLS.KeyFile)
		} else {
			err = app.HttpApp.Listen(addr)
		}
		if err != nil {
			logger.Errorw("HTTP listener failed", "address", addr, "error", err)
			app.Shutdown.Begin("listener failed")
		}
	}()

	<-app.Shutdown.Done()
	logger.Infof("Shutting down gracefully (%s)...", app.Shutdown.Reason())
	app.Prewarm.Stop()

	// let load balancers observe the failing health check first
	if drain := httpConf.DrainDuration(); drain > 0 {
		time.Sleep(drain)
	}

	if err := app.HttpApp.ShutdownWithTimeout(httpConf.ShutdownDuration()); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	} else {
		logger.Info("HTTP server shut down gracefully")
	}

	ctx, cancel := context.WithTimeout(context.Background(), httpConf.ShutdownDuration())
	defer cancel()
	if err := app.Metrics.Stop(ctx); err != nil {
		logger.Errorf("Metrics server shutdown error: %v", err)
	}

	cleanup()

	logger.Info("Server shutdown complete")
	_ = log.Sync()
}
