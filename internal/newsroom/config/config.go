package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/citypress/newsroom/internal/newsroom/service/media"
	"github.com/citypress/newsroom/pkg/cache"
	"github.com/citypress/newsroom/pkg/clouddisk"
	"github.com/citypress/newsroom/pkg/database"
	"github.com/citypress/newsroom/pkg/http"
	"github.com/citypress/newsroom/pkg/log"
	"github.com/citypress/newsroom/pkg/metrics"
	"github.com/citypress/newsroom/pkg/trace"
)

/**
 * @file: config.go
 * @description: application configuration, loaded from TOML with env overrides
 */

const EnvPrefix = "NEWSROOM"

type AppConfig struct {
	Log       log.Conf
	Http      http.Http
	Database  database.Database
	Disk      clouddisk.Conf
	Media     media.Conf
	LinkCache cache.Conf
	Redis     cache.Redis
	Metrics   metrics.MetricsConfig
	Trace     trace.TraceConfig
}

// secrets commonly injected through the environment rather than the file
var envKeys = []string{
	"Disk.Token",
	"Http.Auth.SecretKey",
	"Database.Password",
	"Redis.Password",
}

// SetDefaults fills every section so a missing key never yields a zero timeout.
func (c *AppConfig) SetDefaults() {
	defaults := log.SetDefaults()
	if c.Log.Output == "" {
		c.Log.Output = defaults.Output
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Format
	}
	if c.Log.Path == "" {
		c.Log.Path = defaults.Path
	}
	if c.Log.Filename == "" {
		c.Log.Filename = defaults.Filename
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Level
	}
	c.Http.SetDefaults()
	c.Database.SetDefaults()
	c.Disk.SetDefaults()
	c.Media.SetDefaults()
	c.LinkCache.SetDefaults()
	c.Metrics.SetDefaults()
	c.Trace.SetDefaults()
}

// LoadConfigFile reads path, applies NEWSROOM_* env overrides and defaults,
// and watches the file so the log level can change at runtime.
func LoadConfigFile(path string) (AppConfig, error) {
	var cfg AppConfig

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read configuration file: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}
	cfg.SetDefaults()

	v.OnConfigChange(func(e fsnotify.Event) {
		onChange(v, e)
	})
	v.WatchConfig()

	log.Infow("config file loaded", "path", path)
	return cfg, nil
}

// onChange applies the settings that are safe to swap on a running process.
// Everything else needs a restart.
func onChange(v *viper.Viper, e fsnotify.Event) {
	var next AppConfig
	if err := v.Unmarshal(&next); err != nil {
		log.Warnw("failed to reload configuration", "file", e.Name, "error", err)
		return
	}
	if next.Log.Level == "" || strings.EqualFold(next.Log.Level, log.Level()) {
		return
	}
	log.SetLevel(next.Log.Level)
	log.Infow("log level changed", "file", e.Name, "level", next.Log.Level)
}
