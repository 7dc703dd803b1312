package database

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/citypress/newsroom/pkg/log"
)

var ProviderSet = wire.NewSet(
	ProvideGorm,
	ProvideDB,
)

// ProvideGorm opens the pool after the logger is ready and closes it on cleanup.
func ProvideGorm(conf Database, _ *log.Logger) (*gorm.DB, func(), error) {
	db, err := NewDatabase(conf)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

func ProvideDB(db *gorm.DB) DB {
	return NewGormDB(db)
}
