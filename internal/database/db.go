package database

import (
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"license-key-server/internal/model"
)

var DB *gorm.DB

// InitDB opens the sqlite database under dataDir and migrates the three
// tables: licenses, admin_logs, usage_stats.
func InitDB(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	dbPath := filepath.Join(dataDir, "license.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(&model.License{}, &model.AdminLog{}, &model.UsageStat{}); err != nil {
		return err
	}

	DB = db
	return nil
}
