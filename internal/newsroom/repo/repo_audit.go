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
	"fmt"

	"github.com/citypress/newsroom/internal/newsroom/model"
	"github.com/citypress/newsroom/pkg/database"
)

type AuditRepo struct {
	database.DB
}

type IAuditRepository interface {
	CreateAudit(ctx context.Context, entry *model.AuditLog) error
}

func NewAuditRepo(db database.DB) IAuditRepository {
	return &AuditRepo{DB: db}
}

func (r *AuditRepo) CreateAudit(ctx context.Context, entry *model.AuditLog) error {
	if err := r.DB.DB().WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}
