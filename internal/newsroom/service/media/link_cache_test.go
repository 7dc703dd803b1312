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
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypress/newsroom/internal/newsroom/model"
	"github.com/citypress/newsroom/pkg/cache"
	"github.com/citypress/newsroom/pkg/clouddisk"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "a1", CacheKey("a1", ""))
	assert.Equal(t, "a1:XL", CacheKey("a1", "XL"))
}

func TestLinkCache_GetPut(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, ok := h.links.Get(ctx, "a1", "")
	assert.False(t, ok)

	h.links.Put(ctx, "a1", "", "https://dl.test/x", testNow.Add(time.Hour))
	href, ok := h.links.Get(ctx, "a1", "")
	require.True(t, ok)
	assert.Equal(t, "https://dl.test/x", href)

	t.Run("expired entries are misses", func(t *testing.T) {
		h.links.Put(ctx, "a2", "", "https://dl.test/old", testNow.Add(-time.Second))
		_, ok := h.links.Get(ctx, "a2", "")
		assert.False(t, ok)
	})

	t.Run("original writes back, preview does not", func(t *testing.T) {
		h := newHarness(t)
		h.links.Put(ctx, "a1", "", "https://dl.test/orig", testNow.Add(time.Hour))
		h.links.Put(ctx, "a1", "M", "https://dl.test/prev", testNow.Add(time.Hour))

		updates := h.registry.updatesWith(model.ColumnCachedHref)
		require.Len(t, updates, 1)
		assert.Equal(t, "a1", updates[0].id)
		assert.Equal(t, "https://dl.test/orig", updates[0].fields[model.ColumnCachedHref])
		assert.Equal(t, testNow.Add(time.Hour), updates[0].fields[model.ColumnCachedHrefExpiresAt])
	})
}

func TestLinkCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	for _, size := range []string{"", "S", "XXXL"} {
		h.links.Put(ctx, "a1", size, "https://dl.test/"+size, testNow.Add(time.Hour))
	}
	h.links.Put(ctx, "a2", "", "https://dl.test/other", testNow.Add(time.Hour))

	h.links.Invalidate(ctx, "a1")

	assert.Equal(t, 1, h.store.Len())
	_, ok := h.links.Get(ctx, "a2", "")
	assert.True(t, ok)
}

func TestLinkCache_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("memory hit makes no upstream call", func(t *testing.T) {
		h := newHarness(t)
		asset := withPublicKey(image("a1"), "PK1")
		h.links.Put(ctx, "a1", "", "https://dl.test/mem", testNow.Add(time.Hour))

		href, err := h.links.Resolve(ctx, asset, "")
		require.NoError(t, err)
		assert.Equal(t, "https://dl.test/mem", href)
		assert.Zero(t, h.disk.total())
	})

	t.Run("persisted href fills memory without write-back", func(t *testing.T) {
		h := newHarness(t)
		asset := withCachedHref(image("a1"), "https://dl.test/db", testNow.Add(2*time.Hour))

		href, err := h.links.Resolve(ctx, asset, "")
		require.NoError(t, err)
		assert.Equal(t, "https://dl.test/db", href)
		assert.Zero(t, h.disk.total())
		assert.Empty(t, h.registry.updatesWith(model.ColumnCachedHref))

		entry, ok := h.store.Get(ctx, "a1")
		require.True(t, ok)
		assert.Equal(t, cache.Entry{Href: "https://dl.test/db", ExpiresAt: testNow.Add(2 * time.Hour)}, entry)
	})

	t.Run("persisted href is ignored for previews", func(t *testing.T) {
		h := newHarness(t)
		h.disk.previews["S"] = true
		asset := withCachedHref(image("a1"), "https://dl.test/db", testNow.Add(2*time.Hour))

		href, err := h.links.Resolve(ctx, asset, "S")
		require.NoError(t, err)
		assert.Contains(t, href, "/preview/private/S/")
		assert.Equal(t, 1, h.disk.count("getMeta"))
		assert.Empty(t, h.registry.updatesWith(model.ColumnCachedHref))
	})

	t.Run("expired persisted href is refreshed and written back", func(t *testing.T) {
		h := newHarness(t)
		asset := withCachedHref(image("a1"), "https://dl.test/db", testNow.Add(-time.Minute))

		href, err := h.links.Resolve(ctx, asset, "")
		require.NoError(t, err)
		assert.Contains(t, href, "https://dl.test/private/")
		assert.Equal(t, 1, h.disk.count("privateHref"))

		updates := h.registry.updatesWith(model.ColumnCachedHref)
		require.Len(t, updates, 1)
		assert.Equal(t, href, updates[0].fields[model.ColumnCachedHref])
		assert.Equal(t, testNow.Add(23*time.Hour), updates[0].fields[model.ColumnCachedHrefExpiresAt])
	})

	t.Run("public href failure falls back to private", func(t *testing.T) {
		h := newHarness(t)
		h.disk.publicErr = &clouddisk.APIError{StatusCode: http.StatusNotFound, Code: "DiskNotFoundError"}
		asset := withPublicKey(image("a1"), "PK1")

		href, err := h.links.Resolve(ctx, asset, "")
		require.NoError(t, err)
		assert.Contains(t, href, "https://dl.test/private/")
		assert.Equal(t, 1, h.disk.count("publicHref"))
		assert.Equal(t, 1, h.disk.count("privateHref"))
	})

	t.Run("private failure surfaces", func(t *testing.T) {
		h := newHarness(t)
		h.disk.privateErr = clouddisk.ErrUnavailable

		_, err := h.links.Resolve(ctx, image("a1"), "")
		assert.ErrorIs(t, err, clouddisk.ErrUnavailable)
		assert.Zero(t, h.store.Len())
	})

	t.Run("public preview failure uses private metadata", func(t *testing.T) {
		h := newHarness(t)
		h.disk.previews["M"] = true
		calls := 0
		asset := withPublicKey(image("a1"), "PK1")

		// public lookup fails once, private lookup succeeds
		pub := &failOnceDisk{fakeDisk: h.disk, fail: &calls}
		links := NewLinkCache(h.store, h.registry, pub, Conf{},
			WithNow(func() time.Time { return testNow }),
			WithDetach(func(f func()) { f() }),
		)
		href, err := links.Resolve(ctx, asset, "M")
		require.NoError(t, err)
		assert.Contains(t, href, "/preview/private/M/")
		assert.Equal(t, 1, calls)
	})

	t.Run("missing preview", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.links.Resolve(ctx, image("a1"), "XL")
		assert.ErrorIs(t, err, ErrPreviewUnavailable)

		h.disk.previewErr = &clouddisk.APIError{StatusCode: http.StatusNotFound}
		_, err = h.links.Resolve(ctx, image("a1"), "XL")
		assert.ErrorIs(t, err, ErrPreviewUnavailable)
	})

	t.Run("cancelled context is not masked", func(t *testing.T) {
		h := newHarness(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := h.links.Resolve(ctx, withPublicKey(image("a1"), "PK1"), "")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, h.disk.count("privateHref"))
	})
}

func TestLinkCache_Refresh(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	asset := withPublicKey(image("a1"), "PK1")
	h.links.Put(ctx, "a1", "", "https://dl.test/stale", testNow.Add(time.Hour))

	href, err := h.links.Refresh(ctx, asset, "")
	require.NoError(t, err)
	assert.NotEqual(t, "https://dl.test/stale", href)

	cached, ok := h.links.Get(ctx, "a1", "")
	require.True(t, ok)
	assert.Equal(t, href, cached)
}

// gatedDisk holds public href requests until release is closed.
type gatedDisk struct {
	*fakeDisk
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (d *gatedDisk) GetPublicDownloadHref(ctx context.Context, publicKey string) (string, error) {
	d.once.Do(func() { close(d.entered) })
	<-d.release
	return d.fakeDisk.GetPublicDownloadHref(ctx, publicKey)
}

func TestLinkCache_ConcurrentRefreshIsShared(t *testing.T) {
	h := newHarness(t)
	disk := &gatedDisk{fakeDisk: h.disk, entered: make(chan struct{}), release: make(chan struct{})}
	links := NewLinkCache(h.store, h.registry, disk, Conf{},
		WithNow(func() time.Time { return testNow }),
		WithDetach(func(f func()) { f() }),
	)
	asset := withPublicKey(image("a1"), "PK1")

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := links.Resolve(firstCtx, asset, "")
		firstErr <- err
	}()
	<-disk.entered

	type outcome struct {
		href string
		err  error
	}
	second := make(chan outcome, 1)
	go func() {
		href, err := links.Resolve(context.Background(), asset, "")
		second <- outcome{href: href, err: err}
	}()

	// the first caller leaving must not fail the one still waiting
	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	time.Sleep(50 * time.Millisecond)
	close(disk.release)

	got := <-second
	require.NoError(t, got.err)
	assert.True(t, strings.HasPrefix(got.href, "https://dl.test/public/PK1/"))
	assert.Equal(t, 1, h.disk.count("publicHref"))

	cached, ok := links.Get(context.Background(), "a1", "")
	require.True(t, ok)
	assert.Equal(t, got.href, cached)
}

func TestLinkCache_WriteBackFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.registry.updateErr = errors.New("db down")

	assert.NotPanics(t, func() {
		h.links.WriteBack(context.Background(), "a1", map[string]any{model.ColumnPublicKey: "PK"})
	})
	assert.Len(t, h.registry.updatesWith(model.ColumnPublicKey), 1)
}

func TestLinkCache_WriteBackOutlivesRequest(t *testing.T) {
	h := newHarness(t)
	var got error
	registry := &ctxRegistry{fakeRegistry: h.registry, seen: &got}
	links := NewLinkCache(h.store, registry, h.disk, Conf{}, WithDetach(func(f func()) { f() }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	links.WriteBack(ctx, "a1", map[string]any{model.ColumnPublicKey: "PK"})
	assert.NoError(t, got)
}

// failOnceDisk fails the public metadata lookup.
type failOnceDisk struct {
	*fakeDisk
	fail *int
}

func (d *failOnceDisk) GetPublicMeta(_ context.Context, _ string, _ clouddisk.MetaOptions) (*clouddisk.Resource, error) {
	*d.fail++
	return nil, &clouddisk.APIError{StatusCode: http.StatusInternalServerError}
}

// ctxRegistry records the context error seen by UpdateAsset.
type ctxRegistry struct {
	*fakeRegistry
	seen *error
}

func (r *ctxRegistry) UpdateAsset(ctx context.Context, id string, fields map[string]any) error {
	*r.seen = ctx.Err()
	return r.fakeRegistry.UpdateAsset(ctx, id, fields)
}
