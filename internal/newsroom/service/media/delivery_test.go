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
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypress/newsroom/internal/newsroom/model"
	"github.com/citypress/newsroom/pkg/clouddisk"
)

func TestOpen_PublishesOnDemand(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, image("a1"))
	h.disk.metaPublicKey = "PK1"
	h.disk.respond = func(href, _ string, _ int) response {
		return response{
			status: http.StatusOK,
			header: http.Header{"Content-Type": {"image/jpeg"}},
			body:   "jpeg",
		}
	}

	res, err := h.delivery.Open(ctx, Request{AssetID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "image/jpeg", res.ContentType)
	assert.Equal(t, int64(4), res.ContentLength)
	assert.Equal(t, "public, max-age=31536000, immutable", res.CacheControl)
	assert.Equal(t, RenditionOriginal, res.Rendition)
	assert.False(t, res.FellBack)
	assert.Equal(t, "jpeg", readAll(t, res))

	assert.Equal(t, 1, h.disk.count("publish"))
	assert.Equal(t, 1, h.disk.count("publicHref"))
	assert.Zero(t, h.disk.count("privateHref"))
	assert.True(t, strings.HasPrefix(h.disk.downloads[0], "https://dl.test/public/PK1/"))

	pk := h.registry.updatesWith(model.ColumnPublicKey)
	require.Len(t, pk, 1)
	assert.Equal(t, "PK1", pk[0].fields[model.ColumnPublicKey])
	require.Len(t, h.registry.updatesWith(model.ColumnCachedHref), 1)

	t.Run("second request is served from memory", func(t *testing.T) {
		h.registry.assets["a1"] = withPublicKey(image("a1"), "PK1")
		res, err := h.delivery.Open(ctx, Request{AssetID: "a1"})
		require.NoError(t, err)
		_ = res.Close()

		assert.Equal(t, 1, h.disk.count("publicHref"))
		assert.Equal(t, 1, h.disk.count("publish"))
		assert.Equal(t, h.disk.downloads[0], h.disk.downloads[1])
	})
}

func TestOpen_ForwardsRange(t *testing.T) {
	h := newHarness(t, withPublicKey(video("v1"), "PKV"))
	h.disk.respond = func(_, rangeHeader string, _ int) response {
		return response{
			status: http.StatusPartialContent,
			header: http.Header{"Content-Range": {"bytes 1000-1999/5000"}},
			body:   strings.Repeat("x", 1000),
		}
	}

	res, err := h.delivery.Open(context.Background(), Request{AssetID: "v1", Range: "bytes=1000-1999"})
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, http.StatusPartialContent, res.Status)
	assert.Equal(t, "bytes 1000-1999/5000", res.ContentRange)
	assert.Equal(t, "bytes", res.AcceptRanges)
	assert.Equal(t, "video/mp4", res.ContentType)
	assert.Equal(t, "public, max-age=3600, must-revalidate", res.CacheControl)
	assert.Equal(t, []string{"bytes=1000-1999"}, h.disk.ranges)
	assert.Zero(t, h.disk.count("publish"))
}

func TestOpen_ExpiredPersistedHrefWithoutPublicKey(t *testing.T) {
	h := newHarness(t, withCachedHref(image("a1"), "https://dl.test/db", testNow.Add(-time.Hour)))
	h.disk.publishErr = &clouddisk.APIError{StatusCode: http.StatusForbidden, Code: "DiskForbiddenError"}

	res, err := h.delivery.Open(context.Background(), Request{AssetID: "a1"})
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, 1, h.disk.count("privateHref"))
	assert.Zero(t, h.disk.count("publicHref"))

	entry, ok := h.store.Get(context.Background(), "a1")
	require.True(t, ok)
	assert.Equal(t, testNow.Add(23*time.Hour), entry.ExpiresAt)
	assert.Equal(t, h.disk.downloads[0], entry.Href)

	updates := h.registry.updatesWith(model.ColumnCachedHref)
	require.Len(t, updates, 1)
	assert.Equal(t, testNow.Add(23*time.Hour), updates[0].fields[model.ColumnCachedHrefExpiresAt])
}

func TestOpen_ValidPersistedHref(t *testing.T) {
	h := newHarness(t, withPublicKey(withCachedHref(image("a1"), "https://dl.test/db", testNow.Add(time.Hour)), "PK1"))

	res, err := h.delivery.Open(context.Background(), Request{AssetID: "a1"})
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, []string{"https://dl.test/db"}, h.disk.downloads)
	assert.Zero(t, h.disk.count("publicHref"))
	assert.Zero(t, h.disk.count("privateHref"))
}

func TestOpen_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown asset", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.delivery.Open(ctx, Request{AssetID: "nope"})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Zero(t, h.disk.total())
	})

	t.Run("size on a video", func(t *testing.T) {
		h := newHarness(t, video("v1"))
		_, err := h.delivery.Open(ctx, Request{AssetID: "v1", Size: "S"})
		assert.ErrorIs(t, err, ErrPreviewNotSupported)
		assert.Zero(t, h.disk.total())
	})

	t.Run("registry failure is internal", func(t *testing.T) {
		h := newHarness(t)
		h.registry.findErr = errors.New("db down")
		_, err := h.delivery.Open(ctx, Request{AssetID: "a1"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUpstreamError)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestOpen_PreviewFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("preview fetch 404 serves original", func(t *testing.T) {
		h := newHarness(t, withPublicKey(image("a1"), "PK1"))
		h.disk.previews["S"] = true
		h.disk.respond = func(href, _ string, _ int) response {
			if strings.Contains(href, "/preview/") {
				return response{status: http.StatusNotFound}
			}
			return response{status: http.StatusOK, body: "original"}
		}

		res, err := h.delivery.Open(ctx, Request{AssetID: "a1", Size: "S"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.Status)
		assert.True(t, res.FellBack)
		assert.Equal(t, RenditionOriginal, res.Rendition)
		assert.Equal(t, "public, max-age=3600", res.CacheControl)
		assert.Equal(t, "original", readAll(t, res))
		assert.Len(t, h.disk.downloads, 2)
	})

	t.Run("preview fetch 502 serves original", func(t *testing.T) {
		h := newHarness(t, withPublicKey(image("a1"), "PK1"))
		h.disk.previews["S"] = true
		h.disk.respond = func(href, _ string, _ int) response {
			if strings.Contains(href, "/preview/") {
				return response{status: http.StatusBadGateway}
			}
			return response{status: http.StatusOK}
		}

		res, err := h.delivery.Open(ctx, Request{AssetID: "a1", Size: "S"})
		require.NoError(t, err)
		defer res.Close()
		assert.True(t, res.FellBack)
	})

	t.Run("provider has no preview", func(t *testing.T) {
		h := newHarness(t, withPublicKey(image("a1"), "PK1"))

		res, err := h.delivery.Open(ctx, Request{AssetID: "a1", Size: "XXL"})
		require.NoError(t, err)
		defer res.Close()
		assert.True(t, res.FellBack)
		assert.Len(t, h.disk.downloads, 1)
		assert.True(t, strings.HasPrefix(h.disk.downloads[0], "https://dl.test/public/PK1/"))
	})

	t.Run("preview served", func(t *testing.T) {
		h := newHarness(t, withPublicKey(image("a1"), "PK1"))
		h.disk.previews["M"] = true

		res, err := h.delivery.Open(ctx, Request{AssetID: "a1", Size: "M"})
		require.NoError(t, err)
		defer res.Close()
		assert.False(t, res.FellBack)
		assert.Equal(t, RenditionPreview, res.Rendition)
		assert.Equal(t, "public, max-age=604800, immutable", res.CacheControl)

		_, ok := h.links.Get(ctx, "a1", "M")
		assert.True(t, ok)
		assert.Empty(t, h.registry.updatesWith(model.ColumnCachedHref))
	})
}

func TestOpen_RefreshOnRejectedHref(t *testing.T) {
	ctx := context.Background()

	t.Run("401 then success", func(t *testing.T) {
		h := newHarness(t, withPublicKey(image("a1"), "PK1"))
		h.disk.respond = func(_, _ string, n int) response {
			if n == 1 {
				return response{status: http.StatusUnauthorized}
			}
			return response{status: http.StatusOK, body: "ok"}
		}

		res, err := h.delivery.Open(ctx, Request{AssetID: "a1"})
		require.NoError(t, err)
		assert.Equal(t, "ok", readAll(t, res))
		assert.Equal(t, 2, h.disk.count("publicHref"))
		require.Len(t, h.disk.downloads, 2)
		assert.NotEqual(t, h.disk.downloads[0], h.disk.downloads[1])

		cached, ok := h.links.Get(ctx, "a1", "")
		require.True(t, ok)
		assert.Equal(t, h.disk.downloads[1], cached)
	})

	t.Run("rejected twice", func(t *testing.T) {
		h := newHarness(t, withPublicKey(image("a1"), "PK1"))
		h.disk.respond = func(_, _ string, _ int) response {
			return response{status: http.StatusForbidden}
		}

		_, err := h.delivery.Open(ctx, Request{AssetID: "a1"})
		var statusErr *UpstreamStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusForbidden, statusErr.Status)
		assert.ErrorIs(t, err, ErrUpstreamError)
		assert.ErrorIs(t, err, ErrUpstreamRejected)
		assert.Len(t, h.disk.downloads, 2)
	})

	t.Run("range requests are not retried", func(t *testing.T) {
		h := newHarness(t, withPublicKey(video("v1"), "PKV"))
		h.disk.respond = func(_, _ string, _ int) response {
			return response{status: http.StatusUnauthorized}
		}

		_, err := h.delivery.Open(ctx, Request{AssetID: "v1", Range: "bytes=0-99"})
		assert.ErrorIs(t, err, ErrUpstreamRejected)
		assert.Len(t, h.disk.downloads, 1)
		assert.Equal(t, 1, h.disk.count("publicHref"))
	})

	t.Run("refreshed preview missing falls back to original", func(t *testing.T) {
		h := newHarness(t, withPublicKey(image("a1"), "PK1"))
		h.disk.previews["S"] = true
		h.disk.respond = func(href, _ string, n int) response {
			switch {
			case n == 1:
				return response{status: http.StatusForbidden}
			case strings.Contains(href, "/preview/"):
				return response{status: http.StatusNotFound}
			}
			return response{status: http.StatusOK}
		}

		res, err := h.delivery.Open(ctx, Request{AssetID: "a1", Size: "S"})
		require.NoError(t, err)
		defer res.Close()
		assert.True(t, res.FellBack)
		assert.Len(t, h.disk.downloads, 3)
		assert.Equal(t, 1, h.disk.count("publicHref"))
	})
}

func TestOpen_ConcurrentRequestsShareCache(t *testing.T) {
	const workers = 64
	expired := withCachedHref(image("a1"), "https://dl.test/db", testNow.Add(-time.Hour))
	h := newHarness(t, withPublicKey(expired, "PK1"))
	h.disk.previews["M"] = true
	h.disk.respond = func(href, rangeHeader string, _ int) response {
		if rangeHeader != "" {
			return response{status: http.StatusPartialContent, header: http.Header{"Content-Range": {"bytes 0-3/8"}}, body: "part"}
		}
		return response{status: http.StatusOK, body: href}
	}

	tests := []struct {
		name     string
		req      Request
		status   int
		fellBack bool
	}{
		{name: "original", req: Request{AssetID: "a1"}, status: http.StatusOK},
		{name: "preview", req: Request{AssetID: "a1", Size: "M"}, status: http.StatusOK},
		{name: "missing preview", req: Request{AssetID: "a1", Size: "XXL"}, status: http.StatusOK, fellBack: true},
		{name: "range", req: Request{AssetID: "a1", Range: "bytes=0-3"}, status: http.StatusPartialContent},
	}

	type outcome struct {
		status   int
		fellBack bool
		body     string
		err      error
	}
	results := make([]outcome, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := h.delivery.Open(context.Background(), tests[i%len(tests)].req)
			if err != nil {
				results[i] = outcome{err: err}
				return
			}
			defer res.Close()
			body, err := io.ReadAll(res.Body)
			results[i] = outcome{status: res.Status, fellBack: res.FellBack, body: string(body), err: err}
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		tt := tests[i%len(tests)]
		require.NoError(t, got.err, tt.name)
		assert.Equal(t, tt.status, got.status, tt.name)
		assert.Equal(t, tt.fellBack, got.fellBack, tt.name)
		assert.NotEmpty(t, got.body, tt.name)
	}

	assert.Zero(t, h.disk.count("privateHref"))
	assert.LessOrEqual(t, h.disk.count("publicHref"), workers/len(tests)*2)

	entry, ok := h.store.Get(context.Background(), "a1")
	require.True(t, ok)
	assert.True(t, entry.Valid(testNow))
	assert.True(t, strings.HasPrefix(entry.Href, "https://dl.test/public/PK1/"))
}

func TestOpen_UpstreamFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("server error", func(t *testing.T) {
		h := newHarness(t, withPublicKey(image("a1"), "PK1"))
		h.disk.respond = func(_, _ string, _ int) response {
			return response{status: http.StatusInternalServerError}
		}

		_, err := h.delivery.Open(ctx, Request{AssetID: "a1"})
		assert.ErrorIs(t, err, ErrUpstreamError)
		assert.NotErrorIs(t, err, ErrUpstreamRejected)
		assert.Len(t, h.disk.downloads, 1)
	})

	t.Run("transport error", func(t *testing.T) {
		h := newHarness(t, withPublicKey(image("a1"), "PK1"))
		h.disk.respond = func(_, _ string, _ int) response {
			return response{err: errors.New("connection reset")}
		}

		_, err := h.delivery.Open(ctx, Request{AssetID: "a1"})
		assert.ErrorIs(t, err, ErrUpstreamError)
	})

	t.Run("href issuance failure", func(t *testing.T) {
		h := newHarness(t, image("a1"))
		h.disk.publishErr = clouddisk.ErrUnavailable
		h.disk.privateErr = clouddisk.ErrUnavailable

		_, err := h.delivery.Open(ctx, Request{AssetID: "a1"})
		assert.ErrorIs(t, err, ErrUpstreamError)
		assert.ErrorIs(t, err, clouddisk.ErrUnavailable)
	})

	t.Run("client cancellation", func(t *testing.T) {
		h := newHarness(t, withPublicKey(image("a1"), "PK1"))
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := h.delivery.Open(cctx, Request{AssetID: "a1"})
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrUpstreamError)
	})
}

func TestOpen_PublishWithoutKeyUsesPrivateHref(t *testing.T) {
	h := newHarness(t, image("a1"))

	res, err := h.delivery.Open(context.Background(), Request{AssetID: "a1"})
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, 1, h.disk.count("publish"))
	assert.Equal(t, 1, h.disk.count("getMeta"))
	assert.Equal(t, 1, h.disk.count("privateHref"))
	assert.Empty(t, h.registry.updatesWith(model.ColumnPublicKey))
}

func TestCacheControlOverrides(t *testing.T) {
	d := NewDeliveryService(nil, nil, nil, Conf{CacheControl: CacheControlConf{Original: time.Hour}}, nil)
	assert.Equal(t, "public, max-age=3600, immutable", d.cacheControl(image("a1"), "", false))
	assert.Equal(t, "public, max-age=604800, immutable", d.cacheControl(image("a1"), "S", false))
}
