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
	"time"

	"gorm.io/datatypes"
)

const (
	AuditMediaUpload = "media.upload"
	AuditMediaDelete = "media.delete"
	AuditMediaMove   = "media.move"
	AuditMediaMeta   = "media.meta"
)

// AuditLog records one admin action on an asset (table t_audit_log)
type AuditLog struct {
	ID        uint64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Action    string            `gorm:"column:action;type:varchar(32);not null;index" json:"action"`
	AssetID   string            `gorm:"column:asset_id;type:char(26);index" json:"assetId"`
	Actor     string            `gorm:"column:actor;type:varchar(128)" json:"actor"`
	Detail    datatypes.JSONMap `gorm:"column:detail;type:json" json:"detail"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (AuditLog) TableName() string {
	return "t_audit_log"
}
