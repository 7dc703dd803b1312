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
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/citypress/newsroom/internal/newsroom/model"
	"github.com/citypress/newsroom/pkg/cache"
	"github.com/citypress/newsroom/pkg/clouddisk"
)

var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

type update struct {
	id     string
	fields map[string]any
}

// fakeRegistry is an in-memory asset registry.
type fakeRegistry struct {
	mu        sync.Mutex
	assets    map[string]*model.MediaAsset
	updates   []update
	created   []*model.MediaAsset
	deleted   []string
	findErr   error
	updateErr error
	createErr error
	listErr   error
	listed    [2]int // page and size of the last list
}

func newFakeRegistry(assets ...*model.MediaAsset) *fakeRegistry {
	r := &fakeRegistry{assets: map[string]*model.MediaAsset{}}
	for _, a := range assets {
		r.assets[a.ID] = a
	}
	return r
}

func (r *fakeRegistry) FindAsset(_ context.Context, id string) (*model.MediaAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.assets[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRegistry) UpdateAsset(_ context.Context, id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update{id: id, fields: fields})
	return r.updateErr
}

func (r *fakeRegistry) CreateAsset(_ context.Context, asset *model.MediaAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, asset)
	r.assets[asset.ID] = asset
	return nil
}

func (r *fakeRegistry) DeleteAsset(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	delete(r.assets, id)
	return nil
}

func (r *fakeRegistry) ListAssets(_ context.Context, page, size int) ([]model.MediaAsset, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listed = [2]int{page, size}
	out := make([]model.MediaAsset, 0, len(r.assets))
	for _, a := range r.assets {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRegistry) ListExpiringHrefs(_ context.Context, before time.Time, limit int) ([]model.MediaAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []model.MediaAsset
	for _, a := range r.assets {
		if _, at, ok := a.PersistedHref(); ok && at.Before(before) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CachedHrefExpiresAt.Before(*out[j].CachedHrefExpiresAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// updatesWith returns the updates that touched column.
func (r *fakeRegistry) updatesWith(column string) []update {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []update
	for _, u := range r.updates {
		if _, ok := u.fields[column]; ok {
			out = append(out, u)
		}
	}
	return out
}

type fakeAudits struct {
	mu      sync.Mutex
	entries []*model.AuditLog
	err     error
}

func (a *fakeAudits) CreateAudit(_ context.Context, entry *model.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return a.err
}

type response struct {
	status int
	header http.Header
	body   string
	err    error
}

// fakeDisk records every call. Hrefs it issues are unique per call so tests
// can tell a refreshed href from a cached one.
type fakeDisk struct {
	mu    sync.Mutex
	calls map[string]int
	seq   int

	publishErr    error
	metaPublicKey string
	metaErr       error
	previews      map[string]bool // sizes that have a preview
	previewErr    error
	publicErr     error
	privateErr    error

	// respond answers a download; n counts downloads from 1.
	respond func(href, rangeHeader string, n int) response

	downloads []string
	ranges    []string

	// library operations
	dirs      []string
	uploaded  map[string][]byte
	moved     [][2]string
	removed   []string
	moveErr   error
	deleteErr error
}

func newFakeDisk() *fakeDisk {
	return &fakeDisk{
		calls:    map[string]int{},
		previews: map[string]bool{},
		uploaded: map[string][]byte{},
		respond: func(href, _ string, _ int) response {
			return response{status: http.StatusOK, body: "bytes of " + href}
		},
	}
}

func (d *fakeDisk) count(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[op]
}

func (d *fakeDisk) total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		n += c
	}
	return n
}

func (d *fakeDisk) record(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls[op]++
	d.seq++
	return d.seq
}

func (d *fakeDisk) Publish(_ context.Context, _ string) error {
	d.record("publish")
	return d.publishErr
}

func (d *fakeDisk) GetMeta(ctx context.Context, path string, opts clouddisk.MetaOptions) (*clouddisk.Resource, error) {
	n := d.record("getMeta")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.PreviewSize != "" {
		return d.preview(opts.PreviewSize, "private", n)
	}
	if d.metaErr != nil {
		return nil, d.metaErr
	}
	return &clouddisk.Resource{Path: path, PublicKey: d.metaPublicKey}, nil
}

func (d *fakeDisk) GetPublicMeta(ctx context.Context, _ string, opts clouddisk.MetaOptions) (*clouddisk.Resource, error) {
	n := d.record("getPublicMeta")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.preview(opts.PreviewSize, "public", n)
}

func (d *fakeDisk) preview(size, scope string, n int) (*clouddisk.Resource, error) {
	if d.previewErr != nil {
		return nil, d.previewErr
	}
	res := &clouddisk.Resource{}
	if d.previews[size] {
		res.Preview = fmt.Sprintf("https://dl.test/preview/%s/%s/%d", scope, size, n)
	}
	return res, nil
}

func (d *fakeDisk) GetPublicDownloadHref(ctx context.Context, publicKey string) (string, error) {
	n := d.record("publicHref")
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if d.publicErr != nil {
		return "", d.publicErr
	}
	return fmt.Sprintf("https://dl.test/public/%s/%d", publicKey, n), nil
}

func (d *fakeDisk) GetPrivateDownloadHref(ctx context.Context, _ string) (string, error) {
	n := d.record("privateHref")
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if d.privateErr != nil {
		return "", d.privateErr
	}
	return fmt.Sprintf("https://dl.test/private/%d", n), nil
}

func (d *fakeDisk) Download(ctx context.Context, href, rangeHeader string) (*clouddisk.Download, error) {
	d.record("download")
	d.mu.Lock()
	d.downloads = append(d.downloads, href)
	d.ranges = append(d.ranges, rangeHeader)
	n := len(d.downloads)
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := d.respond(href, rangeHeader, n)
	if r.err != nil {
		return nil, r.err
	}
	header := r.header
	if header == nil {
		header = http.Header{}
	}
	return &clouddisk.Download{
		StatusCode:    r.status,
		Header:        header,
		ContentLength: int64(len(r.body)),
		Body:          io.NopCloser(strings.NewReader(r.body)),
	}, nil
}

func (d *fakeDisk) EnsureDirRecursive(_ context.Context, path string) error {
	d.record("ensureDir")
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dirs = append(d.dirs, path)
	return nil
}

func (d *fakeDisk) GetUploadLink(_ context.Context, path string, _ bool) (*clouddisk.Link, error) {
	d.record("uploadLink")
	return &clouddisk.Link{Href: "https://up.test/" + path, Method: http.MethodPut}, nil
}

func (d *fakeDisk) PutBytes(_ context.Context, href string, payload []byte) error {
	d.record("putBytes")
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uploaded[href] = payload
	return nil
}

func (d *fakeDisk) DeleteResource(_ context.Context, path string, _ bool) error {
	d.record("delete")
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removed = append(d.removed, path)
	return d.deleteErr
}

func (d *fakeDisk) MoveResource(_ context.Context, from, to string, _ bool) error {
	d.record("move")
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.moveErr != nil {
		return d.moveErr
	}
	d.moved = append(d.moved, [2]string{from, to})
	return nil
}

type harness struct {
	registry *fakeRegistry
	disk     *fakeDisk
	store    *cache.LRUStore
	links    *LinkCache
	delivery *DeliveryService
}

func newHarness(t *testing.T, assets ...*model.MediaAsset) *harness {
	t.Helper()
	store, err := cache.NewLRUStore(128)
	require.NoError(t, err)

	h := &harness{
		registry: newFakeRegistry(assets...),
		disk:     newFakeDisk(),
		store:    store,
	}
	h.links = NewLinkCache(store, h.registry, h.disk, Conf{},
		WithNow(func() time.Time { return testNow }),
		WithDetach(func(f func()) { f() }),
	)
	h.delivery = NewDeliveryService(h.registry, h.disk, h.links, Conf{}, nil)
	return h
}

func image(id string) *model.MediaAsset {
	return &model.MediaAsset{ID: id, Kind: model.KindImage, Mime: "image/jpeg", RemotePath: "disk:/media/2025/01/" + id + ".jpg"}
}

func video(id string) *model.MediaAsset {
	return &model.MediaAsset{ID: id, Kind: model.KindVideo, Mime: "video/mp4", RemotePath: "disk:/media/2025/01/" + id + ".mp4"}
}

func withPublicKey(a *model.MediaAsset, pk string) *model.MediaAsset {
	a.PublicKey = &pk
	return a
}

func withCachedHref(a *model.MediaAsset, href string, expiresAt time.Time) *model.MediaAsset {
	a.CachedHref = &href
	a.CachedHrefExpiresAt = &expiresAt
	return a
}

func readAll(t *testing.T, r *Result) string {
	t.Helper()
	defer r.Close()
	b, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	return string(b)
}
