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
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/citypress/newsroom/internal/newsroom/model"
	"github.com/citypress/newsroom/internal/newsroom/repo"
	"github.com/citypress/newsroom/pkg/clouddisk"
	"github.com/citypress/newsroom/pkg/id"
	"github.com/citypress/newsroom/pkg/log"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// LibraryDisk is the part of the remote storage client used to manage files.
type LibraryDisk interface {
	EnsureDirRecursive(ctx context.Context, path string) error
	GetUploadLink(ctx context.Context, path string, overwrite bool) (*clouddisk.Link, error)
	PutBytes(ctx context.Context, uploadHref string, payload []byte) error
	DeleteResource(ctx context.Context, path string, permanently bool) error
	MoveResource(ctx context.Context, from, to string, overwrite bool) error
}

type UploadInput struct {
	Filename string
	Mime     string
	Data     []byte
	Title    string
	Alt      string
	Caption  string
	Actor    string
}

// MetaInput holds descriptive edits; nil fields are left unchanged.
type MetaInput struct {
	Title   *string `json:"title"`
	Alt     *string `json:"alt"`
	Caption *string `json:"caption"`
}

// LibraryService creates, edits and retires assets.
type LibraryService struct {
	assets  repo.IMediaRepository
	audits  repo.IAuditRepository
	disk    LibraryDisk
	links   *LinkCache
	conf    Conf
	now     func() time.Time
	newID   func() string
	newName func() string
}

func NewLibraryService(assets repo.IMediaRepository, audits repo.IAuditRepository, disk LibraryDisk, links *LinkCache, conf Conf) *LibraryService {
	conf.SetDefaults()
	return &LibraryService{
		assets:  assets,
		audits:  audits,
		disk:    disk,
		links:   links,
		conf:    conf,
		now:     time.Now,
		newID:   id.NewULID,
		newName: id.ShortID,
	}
}

// Upload stores the payload under <BaseFolder>/<YYYY>/<MM>/ and registers the
// asset. The asset is published lazily on first delivery.
func (s *LibraryService) Upload(ctx context.Context, in UploadInput) (*model.MediaAsset, error) {
	size := int64(len(in.Data))
	if size == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidUpload)
	}
	if size > s.conf.MaxUploadSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInvalidUpload, size, s.conf.MaxUploadSize)
	}

	contentType := detectMime(in.Mime, in.Data)
	now := s.now().UTC()
	folder := fmt.Sprintf("%s/%04d/%02d", strings.TrimSuffix(s.conf.BaseFolder, "/"), now.Year(), int(now.Month()))
	remotePath := folder + "/" + s.newName() + extension(in.Filename, contentType)

	if err := s.disk.EnsureDirRecursive(ctx, folder); err != nil {
		return nil, fmt.Errorf("ensure folder %s: %w", folder, err)
	}
	link, err := s.disk.GetUploadLink(ctx, remotePath, false)
	if err != nil {
		return nil, fmt.Errorf("upload link for %s: %w", remotePath, err)
	}
	if err := s.disk.PutBytes(ctx, link.Href, in.Data); err != nil {
		return nil, err
	}

	asset := &model.MediaAsset{
		ID:         s.newID(),
		Kind:       model.KindFromMime(contentType),
		Mime:       contentType,
		RemotePath: remotePath,
		Size:       size,
		Title:      in.Title,
		Alt:        in.Alt,
		Caption:    in.Caption,
	}
	if err := s.assets.CreateAsset(ctx, asset); err != nil {
		// the file is orphaned without its row
		if delErr := s.disk.DeleteResource(context.WithoutCancel(ctx), remotePath, true); delErr != nil {
			log.WithContext(ctx).Warnw("failed to remove orphaned upload", "path", remotePath, "error", delErr)
		}
		return nil, err
	}

	s.audit(ctx, model.AuditMediaUpload, asset.ID, in.Actor, datatypes.JSONMap{"remotePath": remotePath})
	log.WithContext(ctx).Infow("media uploaded", "assetId", asset.ID, "path", remotePath, "kind", asset.Kind, "size", size)
	return asset, nil
}

// Delete removes the remote file, waiting for async completion, then the row.
func (s *LibraryService) Delete(ctx context.Context, assetID string, permanently bool, actor string) error {
	asset, err := s.find(ctx, assetID)
	if err != nil {
		return err
	}
	if err := s.disk.DeleteResource(ctx, asset.RemotePath, permanently); err != nil {
		return err
	}
	if err := s.assets.DeleteAsset(ctx, asset.ID); err != nil {
		return err
	}
	s.links.Invalidate(ctx, asset.ID)

	s.audit(ctx, model.AuditMediaDelete, asset.ID, actor, datatypes.JSONMap{"remotePath": asset.RemotePath, "permanently": permanently})
	return nil
}

// Move relocates the remote file into folder. Issued hrefs are bound to the
// old path, so both cache tiers are cleared.
func (s *LibraryService) Move(ctx context.Context, assetID, folder, actor string) (*model.MediaAsset, error) {
	asset, err := s.find(ctx, assetID)
	if err != nil {
		return nil, err
	}
	to := strings.TrimSuffix(folder, "/") + "/" + path.Base(asset.RemotePath)
	if to == asset.RemotePath {
		return asset, nil
	}
	if err := s.disk.MoveResource(ctx, asset.RemotePath, to, false); err != nil {
		return nil, err
	}

	err = s.assets.UpdateAsset(ctx, asset.ID, map[string]any{
		model.ColumnRemotePath:          to,
		model.ColumnCachedHref:          nil,
		model.ColumnCachedHrefExpiresAt: nil,
	})
	if err != nil {
		return nil, err
	}
	s.links.Invalidate(ctx, asset.ID)

	s.audit(ctx, model.AuditMediaMove, asset.ID, actor, datatypes.JSONMap{"from": asset.RemotePath, "to": to})
	asset.RemotePath = to
	asset.CachedHref = nil
	asset.CachedHrefExpiresAt = nil
	return asset, nil
}

func (s *LibraryService) Get(ctx context.Context, assetID string) (*model.MediaAsset, error) {
	return s.find(ctx, assetID)
}

// List returns one page of assets, newest first.
func (s *LibraryService) List(ctx context.Context, page, size int) ([]model.MediaAsset, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return s.assets.ListAssets(ctx, page, size)
}

func (s *LibraryService) UpdateMeta(ctx context.Context, assetID string, in MetaInput, actor string) (*model.MediaAsset, error) {
	asset, err := s.find(ctx, assetID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != nil {
		fields["title"] = *in.Title
		asset.Title = *in.Title
	}
	if in.Alt != nil {
		fields["alt"] = *in.Alt
		asset.Alt = *in.Alt
	}
	if in.Caption != nil {
		fields["caption"] = *in.Caption
		asset.Caption = *in.Caption
	}
	if len(fields) == 0 {
		return asset, nil
	}
	if err := s.assets.UpdateAsset(ctx, asset.ID, fields); err != nil {
		return nil, err
	}

	s.audit(ctx, model.AuditMediaMeta, asset.ID, actor, datatypes.JSONMap{"fields": editedFields(fields)})
	return asset, nil
}

func (s *LibraryService) find(ctx context.Context, assetID string) (*model.MediaAsset, error) {
	asset, err := s.assets.FindAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, ErrNotFound
	}
	return asset, nil
}

// audit records an admin action. A failure never fails the action itself.
func (s *LibraryService) audit(ctx context.Context, action, assetID, actor string, detail datatypes.JSONMap) {
	entry := &model.AuditLog{
		Action:  action,
		AssetID: assetID,
		Actor:   actor,
		Detail:  detail,
	}
	if err := s.audits.CreateAudit(context.WithoutCancel(ctx), entry); err != nil {
		log.WithContext(ctx).Warnw("failed to write audit log", "action", action, "assetId", assetID, "error", err)
	}
}

// detectMime trusts the declared type unless it is missing or generic.
func detectMime(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

func extension(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" && len(ext) <= 8 {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func editedFields(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for _, k := range []string{"title", "alt", "caption"} {
		if _, ok := m[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}
