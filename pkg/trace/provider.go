package trace

import (
	"context"

	"github.com/google/wire"
)

// ProviderSet installs the global tracer provider
var ProviderSet = wire.NewSet(ProvideTracing)

// Shutdown flushes pending spans and stops the exporter.
type Shutdown func(ctx context.Context) error

func ProvideTracing(cfg TraceConfig) (Shutdown, error) {
	shutdown, err := Init(cfg)
	if err != nil {
		return nil, err
	}
	return shutdown, nil
}
