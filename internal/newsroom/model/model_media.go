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

package model

import (
	"strings"
	"time"
)

type MediaKind string

const (
	KindImage MediaKind = "IMAGE"
	KindVideo MediaKind = "VIDEO"
	KindOther MediaKind = "OTHER"
)

// KindFromMime classifies a content type. The result is stored once at
// ingestion and never recomputed.
func KindFromMime(mime string) MediaKind {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	default:
		return KindOther
	}
}

// Column names written back by the delivery path.
const (
	ColumnPublicKey           = "public_key"
	ColumnCachedHref          = "cached_href"
	ColumnCachedHrefExpiresAt = "cached_href_expires_at"
	ColumnRemotePath          = "remote_path"
)

// MediaAsset is one uploaded file (table t_media_asset). PublicKey and the
// cached href are derived state; RemotePath is the source of truth.
type MediaAsset struct {
	ID                  string     `gorm:"column:id;type:char(26);primaryKey" json:"id"`
	Kind                MediaKind  `gorm:"column:kind;type:varchar(16);not null" json:"kind"`
	Mime                string     `gorm:"column:mime;type:varchar(128);not null" json:"mime"`
	RemotePath          string     `gorm:"column:remote_path;type:varchar(1024);not null" json:"remotePath"`
	Size                int64      `gorm:"column:size" json:"size"`
	PublicKey           *string    `gorm:"column:public_key;type:varchar(255)" json:"publicKey,omitempty"`
	CachedHref          *string    `gorm:"column:cached_href;type:text" json:"-"`
	CachedHrefExpiresAt *time.Time `gorm:"column:cached_href_expires_at" json:"-"`
	Title               string     `gorm:"column:title;type:varchar(255)" json:"title"`
	Alt                 string     `gorm:"column:alt;type:varchar(512)" json:"alt"`
	Caption             string     `gorm:"column:caption;type:text" json:"caption"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (MediaAsset) TableName() string {
	return "t_media_asset"
}

func (m *MediaAsset) IsImage() bool {
	return m.Kind == KindImage
}

func (m *MediaAsset) PublicKeyValue() string {
	if m.PublicKey == nil {
		return ""
	}
	return *m.PublicKey
}

// PersistedHref returns the stored original href and its expiry, if any.
func (m *MediaAsset) PersistedHref() (string, time.Time, bool) {
	if m.CachedHref == nil || *m.CachedHref == "" || m.CachedHrefExpiresAt == nil {
		return "", time.Time{}, false
	}
	return *m.CachedHref, *m.CachedHrefExpiresAt, true
}
