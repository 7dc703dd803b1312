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
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/citypress/newsroom/internal/newsroom/model"
	"github.com/citypress/newsroom/pkg/clouddisk"
	"github.com/citypress/newsroom/pkg/log"
	"github.com/citypress/newsroom/pkg/metrics"
)

const (
	RenditionOriginal = "original"
	RenditionPreview  = "preview"
)

// Request is one delivery request. Size selects a preview rendition and
// Range is forwarded upstream verbatim.
type Request struct {
	AssetID string
	Size    string
	Range   string
}

// Result is an open upstream stream plus the response metadata. The caller
// owns Body.
type Result struct {
	Status        int
	Body          io.ReadCloser
	ContentLength int64 // -1 when unknown
	ContentType   string
	ContentRange  string
	AcceptRanges  string
	CacheControl  string
	Rendition     string
	FellBack      bool // preview requested, original served
}

func (r *Result) Close() error {
	if r == nil || r.Body == nil {
		return nil
	}
	return r.Body.Close()
}

// DeliveryService turns an asset id into a byte stream, publishing on demand
// and recovering from missing previews and rejected hrefs.
type DeliveryService struct {
	registry Registry
	disk     Disk
	links    *LinkCache
	conf     Conf
	metrics  *metrics.MediaMetrics
	tracer   trace.Tracer
}

func NewDeliveryService(registry Registry, disk Disk, links *LinkCache, conf Conf, m *metrics.MediaMetrics) *DeliveryService {
	conf.SetDefaults()
	return &DeliveryService{
		registry: registry,
		disk:     disk,
		links:    links,
		conf:     conf,
		metrics:  m,
		tracer:   otel.Tracer(tracerName),
	}
}

// Open resolves the asset and opens the upstream stream. At most one
// preview-to-original fallback and one refresh-and-retry are attempted.
func (s *DeliveryService) Open(ctx context.Context, req Request) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "media.open", trace.WithAttributes(
		attribute.String("asset.id", req.AssetID),
		attribute.String("asset.size", req.Size),
		attribute.Bool("http.range", req.Range != ""),
	))
	defer span.End()

	asset, err := s.registry.FindAsset(ctx, req.AssetID)
	if err != nil {
		return nil, fmt.Errorf("find asset %s: %w", req.AssetID, err)
	}
	if asset == nil {
		return nil, ErrNotFound
	}
	if req.Size != "" && !asset.IsImage() {
		return nil, ErrPreviewNotSupported
	}

	s.ensurePublished(ctx, asset)

	logger := log.WithContext(ctx)
	size := req.Size
	fellBack := false
	fallback := func(dl *clouddisk.Download, err error) {
		_ = dl.Close()
		s.metrics.Fallback(metrics.FallbackPreview)
		logger.Warnw("preview unavailable, serving original",
			"assetId", asset.ID, "size", size, "status", statusOf(dl), "error", err)
		size = ""
		fellBack = true
	}

	dl, err := s.fetch(ctx, asset, size, req.Range, false)
	if size != "" && s.previewMissing(ctx, dl, err) {
		fallback(dl, err)
		dl, err = s.fetch(ctx, asset, "", req.Range, false)
	}
	if err != nil {
		return nil, s.upstreamErr(ctx, span, err)
	}

	if req.Range == "" && isRejected(dl.StatusCode) {
		_ = dl.Close()
		s.metrics.Fallback(metrics.FallbackRefresh)
		logger.Warnw("href rejected upstream, refreshing",
			"assetId", asset.ID, "size", size, "status", dl.StatusCode)

		dl, err = s.fetch(ctx, asset, size, "", true)
		if size != "" && s.previewMissing(ctx, dl, err) {
			fallback(dl, err)
			dl, err = s.fetch(ctx, asset, "", "", true)
		}
		if err != nil {
			return nil, s.upstreamErr(ctx, span, err)
		}
	}

	if dl.StatusCode != http.StatusOK && dl.StatusCode != http.StatusPartialContent {
		_ = dl.Close()
		logger.Warnw("upstream fetch failed", "assetId", asset.ID, "size", size, "status", dl.StatusCode)
		err := &UpstreamStatusError{Status: dl.StatusCode}
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.upstream_status", dl.StatusCode), attribute.Bool("media.fallback", fellBack))
	return s.result(asset, req.Size, fellBack, dl), nil
}

// ensurePublished publishes a private asset and records its public key.
// Failures are logged; the request then continues with a private href.
func (s *DeliveryService) ensurePublished(ctx context.Context, asset *model.MediaAsset) {
	if asset.PublicKeyValue() != "" {
		return
	}
	logger := log.WithContext(ctx)

	if err := s.disk.Publish(ctx, asset.RemotePath); err != nil {
		if ctx.Err() == nil {
			logger.Warnw("publish failed", "assetId", asset.ID, "error", err)
		}
		return
	}
	res, err := s.disk.GetMeta(ctx, asset.RemotePath, clouddisk.MetaOptions{Fields: []string{"public_key"}})
	if err != nil {
		if ctx.Err() == nil {
			logger.Warnw("public key lookup failed", "assetId", asset.ID, "error", err)
		}
		return
	}
	if res.PublicKey == "" {
		logger.Warnw("published resource has no public key", "assetId", asset.ID)
		return
	}

	pk := res.PublicKey
	asset.PublicKey = &pk
	s.links.WriteBack(ctx, asset.ID, map[string]any{model.ColumnPublicKey: pk})
}

func (s *DeliveryService) fetch(ctx context.Context, asset *model.MediaAsset, size, rangeHeader string, force bool) (*clouddisk.Download, error) {
	var (
		href string
		err  error
	)
	if force {
		href, err = s.links.Refresh(ctx, asset, size)
	} else {
		href, err = s.links.Resolve(ctx, asset, size)
	}
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "media.fetch", trace.WithAttributes(
		attribute.String("asset.id", asset.ID),
		attribute.String("asset.size", size),
	))
	defer span.End()

	dl, err := s.disk.Download(ctx, href, rangeHeader)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", dl.StatusCode))
	return dl, nil
}

// previewMissing reports whether a preview attempt should fall back to the
// original: the preview could not be resolved or the fetch answered 404/502.
func (s *DeliveryService) previewMissing(ctx context.Context, dl *clouddisk.Download, err error) bool {
	if err != nil {
		return ctx.Err() == nil
	}
	return dl.StatusCode == http.StatusNotFound || dl.StatusCode == http.StatusBadGateway
}

func (s *DeliveryService) upstreamErr(ctx context.Context, span trace.Span, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	span.RecordError(err)
	log.WithContext(ctx).Warnw("upstream resolution failed", "error", err)
	if errors.Is(err, ErrUpstreamError) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstreamError, err)
}

func (s *DeliveryService) result(asset *model.MediaAsset, requestedSize string, fellBack bool, dl *clouddisk.Download) *Result {
	r := &Result{
		Status:        dl.StatusCode,
		Body:          dl.Body,
		ContentLength: dl.ContentLength,
		ContentType:   dl.Header.Get("Content-Type"),
		ContentRange:  dl.Header.Get("Content-Range"),
		AcceptRanges:  dl.Header.Get("Accept-Ranges"),
		Rendition:     RenditionOriginal,
		FellBack:      fellBack,
	}
	if r.ContentType == "" {
		r.ContentType = asset.Mime
	}
	if r.AcceptRanges == "" && asset.Kind == model.KindVideo {
		r.AcceptRanges = "bytes"
	}
	if requestedSize != "" && !fellBack {
		r.Rendition = RenditionPreview
	}
	r.CacheControl = s.cacheControl(asset, requestedSize, fellBack)
	return r
}

func (s *DeliveryService) cacheControl(asset *model.MediaAsset, requestedSize string, fellBack bool) string {
	cc := s.conf.CacheControl
	switch {
	case fellBack:
		return fmt.Sprintf("public, max-age=%d", seconds(cc.Fallback))
	case requestedSize != "":
		return fmt.Sprintf("public, max-age=%d, immutable", seconds(cc.Preview))
	case asset.Kind == model.KindImage:
		return fmt.Sprintf("public, max-age=%d, immutable", seconds(cc.Original))
	default:
		return fmt.Sprintf("public, max-age=%d, must-revalidate", seconds(cc.Default))
	}
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

func isRejected(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func statusOf(dl *clouddisk.Download) int {
	if dl == nil {
		return 0
	}
	return dl.StatusCode
}
