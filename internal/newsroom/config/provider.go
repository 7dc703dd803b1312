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

package config

import (
	"github.com/google/wire"

	"github.com/citypress/newsroom/internal/newsroom/service/media"
	"github.com/citypress/newsroom/pkg/cache"
	"github.com/citypress/newsroom/pkg/clouddisk"
	"github.com/citypress/newsroom/pkg/database"
	"github.com/citypress/newsroom/pkg/http"
	"github.com/citypress/newsroom/pkg/log"
	"github.com/citypress/newsroom/pkg/metrics"
	"github.com/citypress/newsroom/pkg/trace"
)

// ProviderSet splits the application config into per-package sections.
var ProviderSet = wire.NewSet(
	ProvideConf,
	ProvideHttpConfig,
	ProvideLogConfig,
	ProvideDatabaseConfig,
	ProvideDiskConfig,
	ProvideMediaConfig,
	ProvideLinkCacheConfig,
	ProvideRedisConfig,
	ProvideMetricsConfig,
	ProvideTraceConfig,
)

func ProvideConf(configPath string) (*AppConfig, error) {
	cfg, err := LoadConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func ProvideHttpConfig(appConf *AppConfig) http.Http {
	return appConf.Http
}

func ProvideLogConfig(appConf *AppConfig) *log.Conf {
	return &appConf.Log
}

func ProvideDatabaseConfig(appConf *AppConfig) database.Database {
	return appConf.Database
}

func ProvideDiskConfig(appConf *AppConfig) clouddisk.Conf {
	return appConf.Disk
}

func ProvideMediaConfig(appConf *AppConfig) media.Conf {
	return appConf.Media
}

func ProvideLinkCacheConfig(appConf *AppConfig) cache.Conf {
	return appConf.LinkCache
}

func ProvideRedisConfig(appConf *AppConfig) cache.Redis {
	return appConf.Redis
}

func ProvideMetricsConfig(appConf *AppConfig) metrics.MetricsConfig {
	return appConf.Metrics
}

func ProvideTraceConfig(appConf *AppConfig) trace.TraceConfig {
	return appConf.Trace
}
