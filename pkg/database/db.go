package database

import (
	"gorm.io/gorm"
)

type DB interface {
	// DB returns the underlying *gorm.DB
	DB() *gorm.DB
}

type GormDB struct {
	db *gorm.DB
}

func NewGormDB(db *gorm.DB) DB {
	return &GormDB{db: db}
}

func (g *GormDB) DB() *gorm.DB {
	return g.db
}
