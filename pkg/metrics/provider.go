package metrics

import (
	"github.com/google/wire"
)

// ProviderSet is a Wire provider set for metrics
var ProviderSet = wire.NewSet(
	NewMetricsServer,
	ProvideMediaMetrics,
)

// NewMetricsServer creates a new metrics server from config
func NewMetricsServer(config MetricsConfig) *Server {
	config.SetDefaults()
	return NewServer(config)
}

// ProvideMediaMetrics creates the media collectors and registers them on the
// server registry.
func ProvideMediaMetrics(server *Server) (*MediaMetrics, error) {
	m := NewMediaMetrics()
	if err := m.Register(server.Registry()); err != nil {
		return nil, err
	}
	return m, nil
}
