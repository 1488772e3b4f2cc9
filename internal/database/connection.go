package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/actionsum/appusage/internal/models"

	"github.com/adrg/xdg"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultDBName = "usage.db"
	defaultDBDir  = "appusage"

	// CurrentAPILevel is stamped into fresh stores. Level 2 stores record
	// millisecond durations and answer aggregated queries.
	CurrentAPILevel = 2

	// LegacyAPILevel is reported for stores created before the level was stamped.
	LegacyAPILevel = 1

	metaAPILevel = "api_level"
)

type DB struct {
	*gorm.DB
}

func GetDefaultDBPath() (string, error) {
	dbDir := filepath.Join(xdg.DataHome, defaultDBDir)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}

	return filepath.Join(dbDir, defaultDBName), nil
}

func Connect(dbPath string) (*DB, error) {
	if dbPath == "" {
		var err error
		dbPath, err = GetDefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{db}, nil
}

// Initialize migrates the schema. A store that already held focus events but
// no api_level row predates aggregation and keeps LegacyAPILevel.
func (db *DB) Initialize() error {
	existing := db.Migrator().HasTable(&models.FocusEvent{})

	err := db.AutoMigrate(&models.FocusEvent{}, &models.ErrorLog{}, &models.AccessMode{}, &models.StoreMeta{})
	if err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	var meta models.StoreMeta
	result := db.Where("name = ?", metaAPILevel).Limit(1).Find(&meta)
	if result.Error != nil {
		return fmt.Errorf("failed to read store metadata: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	level := CurrentAPILevel
	if existing {
		level = LegacyAPILevel
	}
	meta = models.StoreMeta{Name: metaAPILevel, Value: strconv.Itoa(level)}
	if err := db.Create(&meta).Error; err != nil {
		return fmt.Errorf("failed to stamp store api level: %w", err)
	}

	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
