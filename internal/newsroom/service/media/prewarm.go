package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"

	"github.com/citypress/newsroom/internal/newsroom/model"
	"github.com/citypress/newsroom/pkg/log"
)

/**
 * @file: prewarm.go
 * @description: periodic renewal of persisted original hrefs
 */

// ExpiringLister finds assets whose persisted href is about to lapse.
type ExpiringLister interface {
	ListExpiringHrefs(ctx context.Context, before time.Time, limit int) ([]model.MediaAsset, error)
}

// Prewarmer renews the persisted href of originals shortly before expiry so
// the first reader after a quiet period does not pay for a provider round trip.
type Prewarmer struct {
	lister ExpiringLister
	links  *LinkCache
	conf   PrewarmConf
	now    func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func NewPrewarmer(lister ExpiringLister, links *LinkCache, conf Conf) *Prewarmer {
	conf.SetDefaults()
	return &Prewarmer{
		lister: lister,
		links:  links,
		conf:   conf.Prewarm,
		now:    links.now,
	}
}

// RunOnce renews one batch. A failed asset is logged and skipped; only a
// listing error or cancellation stops the run.
func (p *Prewarmer) RunOnce(ctx context.Context) (int, error) {
	assets, err := p.lister.ListExpiringHrefs(ctx, p.now().Add(p.conf.Window), p.conf.Batch)
	if err != nil {
		return 0, err
	}

	renewed := 0
	for i := range assets {
		if err := ctx.Err(); err != nil {
			return renewed, err
		}
		if _, err := p.links.Refresh(ctx, &assets[i], ""); err != nil {
			log.WithContext(ctx).Warnw("href prewarm failed", "assetId", assets[i].ID, "error", err)
			continue
		}
		renewed++
	}
	return renewed, nil
}

// Start schedules RunOnce. It is a no-op when the job is disabled.
func (p *Prewarmer) Start() error {
	if p == nil || !p.conf.Enabled {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}

	c := cron.New()
	if err := c.AddFunc(p.conf.Schedule, p.tick); err != nil {
		return fmt.Errorf("invalid prewarm schedule %q: %w", p.conf.Schedule, err)
	}
	c.Start()
	p.cron = c
	p.running = true
	log.Infow("href prewarm scheduled", "schedule", p.conf.Schedule, "window", p.conf.Window)
	return nil
}

func (p *Prewarmer) Stop() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.cron.Stop()
	p.running = false
}

func (p *Prewarmer) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), p.conf.Window)
	defer cancel()
	n, err := p.RunOnce(ctx)
	if err != nil {
		log.Warnw("href prewarm run aborted", "renewed", n, "error", err)
		return
	}
	if n > 0 {
		log.Infow("href prewarm run finished", "renewed", n)
	}
}
