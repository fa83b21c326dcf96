package database

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"license-key-server/internal/model"
)

// InitTestDB swaps DB for an in-memory sqlite instance. A single connection
// keeps concurrent test writers serialized instead of hitting SQLITE_BUSY.
func InitTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect test database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic("failed to access test database handle")
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&model.License{}, &model.AdminLog{}, &model.UsageStat{})
	if err != nil {
		panic("failed to migrate test database")
	}

	DB = db
}

func CleanTestDB() {
	sqlDB, err := DB.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
