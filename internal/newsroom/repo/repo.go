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
	"fmt"

	"gorm.io/gorm"

	"github.com/citypress/newsroom/internal/newsroom/model"
	"github.com/citypress/newsroom/pkg/database"
	"github.com/citypress/newsroom/pkg/log"
)

// Repositories groups every repository of the service
type Repositories struct {
	Media IMediaRepository
	Audit IAuditRepository
}

func NewRepositories(db database.DB) *Repositories {
	return &Repositories{
		Media: NewMediaRepo(db),
		Audit: NewAuditRepo(db),
	}
}

// Migrate creates or alters the tables of every model.
func Migrate(db database.DB) error {
	if err := db.DB().AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("database schema migrated")
	return nil
}

func Count(tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
