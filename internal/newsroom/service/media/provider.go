package media

import (
	"github.com/google/wire"

	"github.com/citypress/newsroom/internal/newsroom/repo"
	"github.com/citypress/newsroom/pkg/cache"
	"github.com/citypress/newsroom/pkg/clouddisk"
	"github.com/citypress/newsroom/pkg/metrics"
)

// ProviderSet provides the media services
var ProviderSet = wire.NewSet(
	ProvideLinkCache,
	ProvideDiskObserver,
	NewDeliveryService,
	NewLibraryService,
	NewPrewarmer,
	wire.Bind(new(Registry), new(repo.IMediaRepository)),
	wire.Bind(new(ExpiringLister), new(repo.IMediaRepository)),
	wire.Bind(new(Disk), new(*clouddisk.Client)),
	wire.Bind(new(LibraryDisk), new(*clouddisk.Client)),
)

func ProvideLinkCache(store cache.Store, registry Registry, disk Disk, conf Conf, m *metrics.MediaMetrics) *LinkCache {
	return NewLinkCache(store, registry, disk, conf, WithMetrics(m))
}

// ProvideDiskObserver counts every cloud disk call in the upstream metric.
func ProvideDiskObserver(m *metrics.MediaMetrics) clouddisk.Observer {
	return m.ObserveUpstream
}
