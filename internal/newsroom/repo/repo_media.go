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

package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/citypress/newsroom/internal/newsroom/model"
	"github.com/citypress/newsroom/pkg/database"
)

type MediaRepo struct {
	database.DB
}

// IMediaRepository is the asset registry.
type IMediaRepository interface {
	// FindAsset returns nil without error when the asset does not exist.
	FindAsset(ctx context.Context, id string) (*model.MediaAsset, error)
	// UpdateAsset applies a last-writer-wins partial update.
	UpdateAsset(ctx context.Context, id string, fields map[string]any) error
	CreateAsset(ctx context.Context, asset *model.MediaAsset) error
	DeleteAsset(ctx context.Context, id string) error
	ListAssets(ctx context.Context, page, size int) ([]model.MediaAsset, int64, error)
	// ListExpiringHrefs returns assets whose persisted href expires before
	// the given time, soonest first.
	ListExpiringHrefs(ctx context.Context, before time.Time, limit int) ([]model.MediaAsset, error)
}

func NewMediaRepo(db database.DB) IMediaRepository {
	return &MediaRepo{DB: db}
}

func (r *MediaRepo) FindAsset(ctx context.Context, id string) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	err := r.DB.DB().WithContext(ctx).
		Where("id = ?", id).
		First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find media asset %s: %w", id, err)
	}
	return &asset, nil
}

func (r *MediaRepo) UpdateAsset(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.DB.DB().WithContext(ctx).
		Model(&model.MediaAsset{}).
		Where("id = ?", id).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("failed to update media asset %s: %w", id, err)
	}
	return nil
}

func (r *MediaRepo) CreateAsset(ctx context.Context, asset *model.MediaAsset) error {
	if err := r.DB.DB().WithContext(ctx).Create(asset).Error; err != nil {
		return fmt.Errorf("failed to create media asset: %w", err)
	}
	return nil
}

func (r *MediaRepo) DeleteAsset(ctx context.Context, id string) error {
	err := r.DB.DB().WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.MediaAsset{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete media asset %s: %w", id, err)
	}
	return nil
}

// ListAssets returns one page of assets, newest first. page starts at 1.
func (r *MediaRepo) ListAssets(ctx context.Context, page, size int) ([]model.MediaAsset, int64, error) {
	db := r.DB.DB().WithContext(ctx)

	total, err := Count(db.Model(&model.MediaAsset{}))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count media assets: %w", err)
	}

	var assets []model.MediaAsset
	err = db.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&assets).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list media assets: %w", err)
	}
	return assets, total, nil
}

func (r *MediaRepo) ListExpiringHrefs(ctx context.Context, before time.Time, limit int) ([]model.MediaAsset, error) {
	var assets []model.MediaAsset
	err := r.DB.DB().WithContext(ctx).
		Where("cached_href_expires_at IS NOT NULL AND cached_href_expires_at < ?", before).
		Order("cached_href_expires_at ASC").
		Limit(limit).
		Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring media hrefs: %w", err)
	}
	return assets, nil
}
