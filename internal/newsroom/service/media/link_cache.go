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

package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/citypress/newsroom/internal/newsroom/model"
	"github.com/citypress/newsroom/pkg/cache"
	"github.com/citypress/newsroom/pkg/clouddisk"
	"github.com/citypress/newsroom/pkg/log"
	"github.com/citypress/newsroom/pkg/metrics"
	"github.com/citypress/newsroom/pkg/safe"
)

const (
	tracerName       = "github.com/citypress/newsroom/internal/newsroom/service/media"
	writeBackTimeout = 10 * time.Second
)

// previewSizes are the named sizes the provider understands. They bound the
// keys dropped when an asset's links are invalidated.
var previewSizes = []string{"XXXS", "XXS", "XS", "S", "M", "L", "XL", "XXL", "XXXL"}

// Registry is the asset registry as seen by the delivery path.
type Registry interface {
	// FindAsset returns nil without error when id is unknown.
	FindAsset(ctx context.Context, id string) (*model.MediaAsset, error)
	UpdateAsset(ctx context.Context, id string, fields map[string]any) error
}

// Disk is the part of the remote storage client used for delivery.
type Disk interface {
	Publish(ctx context.Context, path string) error
	GetMeta(ctx context.Context, path string, opts clouddisk.MetaOptions) (*clouddisk.Resource, error)
	GetPublicMeta(ctx context.Context, publicKey string, opts clouddisk.MetaOptions) (*clouddisk.Resource, error)
	GetPublicDownloadHref(ctx context.Context, publicKey string) (string, error)
	GetPrivateDownloadHref(ctx context.Context, path string) (string, error)
	Download(ctx context.Context, href, rangeHeader string) (*clouddisk.Download, error)
}

// CacheKey is the link cache key of a rendition: the asset id for the
// original, assetId:size for a preview.
func CacheKey(assetID, size string) string {
	if size == "" {
		return assetID
	}
	return assetID + ":" + size
}

// LinkCache resolves working download hrefs. The in-memory tier is the
// injected store; the original rendition also has a persisted tier on the
// asset row. Entries are immutable snapshots, concurrent writers of the same
// key simply race and the last one wins. Concurrent refreshes of one key in
// this process share a single provider round trip.
type LinkCache struct {
	flight   singleflight.Group
	store    cache.Store
	registry Registry
	disk     Disk
	ttl      time.Duration
	now      func() time.Time
	detach   func(func())
	metrics  *metrics.MediaMetrics
	tracer   trace.Tracer
}

type LinkCacheOption func(*LinkCache)

// WithNow replaces the wall clock used for expiry.
func WithNow(now func() time.Time) LinkCacheOption {
	return func(c *LinkCache) {
		c.now = now
	}
}

// WithDetach replaces the runner of best-effort registry write-backs.
func WithDetach(run func(func())) LinkCacheOption {
	return func(c *LinkCache) {
		c.detach = run
	}
}

func WithMetrics(m *metrics.MediaMetrics) LinkCacheOption {
	return func(c *LinkCache) {
		c.metrics = m
	}
}

func NewLinkCache(store cache.Store, registry Registry, disk Disk, conf Conf, opts ...LinkCacheOption) *LinkCache {
	conf.SetDefaults()
	c := &LinkCache{
		store:    store,
		registry: registry,
		disk:     disk,
		ttl:      conf.LinkTTL,
		now:      time.Now,
		detach:   safe.Go,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a usable href from the in-memory tier.
func (c *LinkCache) Get(ctx context.Context, assetID, size string) (string, bool) {
	entry, ok := c.store.Get(ctx, CacheKey(assetID, size))
	hit := ok && entry.Valid(c.now())
	c.metrics.CacheLookup(metrics.TierMemory, hit)
	if !hit {
		return "", false
	}
	return entry.Href, true
}

// Put stores href in the in-memory tier. For the original rendition the
// persisted tier is updated too, without waiting for it.
func (c *LinkCache) Put(ctx context.Context, assetID, size, href string, expiresAt time.Time) {
	c.store.Put(ctx, CacheKey(assetID, size), cache.Entry{Href: href, ExpiresAt: expiresAt})
	if size != "" {
		return
	}
	c.WriteBack(ctx, assetID, map[string]any{
		model.ColumnCachedHref:          href,
		model.ColumnCachedHrefExpiresAt: expiresAt,
	})
}

// Invalidate drops every in-memory entry of an asset.
func (c *LinkCache) Invalidate(ctx context.Context, assetID string) {
	keys := make([]string, 0, len(previewSizes)+1)
	keys = append(keys, assetID)
	for _, size := range previewSizes {
		keys = append(keys, CacheKey(assetID, size))
	}
	c.store.Delete(ctx, keys...)
}

// Resolve returns a working href for the rendition: in-memory tier, then the
// persisted href for the original, then a fresh one from the provider.
func (c *LinkCache) Resolve(ctx context.Context, asset *model.MediaAsset, size string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "media.resolve", trace.WithAttributes(
		attribute.String("asset.id", asset.ID),
		attribute.String("asset.size", size),
	))
	defer span.End()
	start := c.now()
	defer func() { c.metrics.ObserveResolve(c.now().Sub(start)) }()

	if href, ok := c.Get(ctx, asset.ID, size); ok {
		log.WithContext(ctx).Debugw("link cache hit", "assetId", asset.ID, "size", size, "tier", metrics.TierMemory)
		return href, nil
	}

	if size == "" {
		href, expiresAt, ok := asset.PersistedHref()
		hit := ok && c.now().Before(expiresAt)
		c.metrics.CacheLookup(metrics.TierPersisted, hit)
		if hit {
			c.store.Put(ctx, CacheKey(asset.ID, ""), cache.Entry{Href: href, ExpiresAt: expiresAt})
			log.WithContext(ctx).Debugw("link cache hit", "assetId", asset.ID, "tier", metrics.TierPersisted)
			return href, nil
		}
	}

	href, err := c.refresh(ctx, asset, size)
	if err != nil {
		span.RecordError(err)
	}
	return href, err
}

// Refresh issues a brand-new href, bypassing both tiers, and stores it.
func (c *LinkCache) Refresh(ctx context.Context, asset *model.MediaAsset, size string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "media.refresh", trace.WithAttributes(
		attribute.String("asset.id", asset.ID),
		attribute.String("asset.size", size),
	))
	defer span.End()

	href, err := c.refresh(ctx, asset, size)
	if err != nil {
		span.RecordError(err)
	}
	return href, err
}

func (c *LinkCache) refresh(ctx context.Context, asset *model.MediaAsset, size string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// the shared call must not die with whichever caller started it
	shared := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(CacheKey(asset.ID, size), func() (any, error) {
		return c.issue(shared, asset, size)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *LinkCache) issue(ctx context.Context, asset *model.MediaAsset, size string) (string, error) {
	var (
		href string
		err  error
	)
	if size == "" {
		href, err = c.issueOriginal(ctx, asset)
	} else {
		href, err = c.issuePreview(ctx, asset, size)
	}
	if err != nil {
		return "", err
	}
	c.Put(ctx, asset.ID, size, href, c.now().Add(c.ttl))
	return href, nil
}

// issueOriginal prefers the public-key href and falls back to the private
// one in the same call when the public lookup fails.
func (c *LinkCache) issueOriginal(ctx context.Context, asset *model.MediaAsset) (string, error) {
	if pk := asset.PublicKeyValue(); pk != "" {
		href, err := c.disk.GetPublicDownloadHref(ctx, pk)
		if err == nil {
			return href, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.metrics.Fallback(metrics.FallbackPrivate)
		log.WithContext(ctx).Warnw("public download href failed, using private href",
			"assetId", asset.ID, "error", err)
	}
	href, err := c.disk.GetPrivateDownloadHref(ctx, asset.RemotePath)
	if err != nil {
		return "", fmt.Errorf("private download href for %s: %w", asset.ID, err)
	}
	return href, nil
}

func (c *LinkCache) issuePreview(ctx context.Context, asset *model.MediaAsset, size string) (string, error) {
	opts := clouddisk.MetaOptions{Fields: []string{"preview"}, PreviewSize: size}

	var (
		res *clouddisk.Resource
		err error
	)
	if pk := asset.PublicKeyValue(); pk != "" {
		res, err = c.disk.GetPublicMeta(ctx, pk, opts)
		if err != nil && ctx.Err() == nil {
			log.WithContext(ctx).Warnw("public preview lookup failed, using private metadata",
				"assetId", asset.ID, "size", size, "error", err)
			res, err = c.disk.GetMeta(ctx, asset.RemotePath, opts)
		}
	} else {
		res, err = c.disk.GetMeta(ctx, asset.RemotePath, opts)
	}
	if err != nil {
		if clouddisk.IsStatus(err, http.StatusNotFound) {
			return "", fmt.Errorf("%w: %v", ErrPreviewUnavailable, err)
		}
		return "", fmt.Errorf("preview %s for %s: %w", size, asset.ID, err)
	}
	if res.Preview == "" {
		return "", fmt.Errorf("%w: size %s of %s", ErrPreviewUnavailable, size, asset.ID)
	}
	return res.Preview, nil
}

// WriteBack applies fields to the asset row in the background. The request
// never waits for it and a failure is only logged.
func (c *LinkCache) WriteBack(ctx context.Context, assetID string, fields map[string]any) {
	logger := log.WithContext(ctx)
	bg := context.WithoutCancel(ctx)
	c.detach(func() {
		ctx, cancel := context.WithTimeout(bg, writeBackTimeout)
		defer cancel()
		if err := c.registry.UpdateAsset(ctx, assetID, fields); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warnw("asset write-back failed", "assetId", assetID, "error", err)
		}
	})
}
