package models

import (
	"time"

	"gorm.io/gorm"
)

// FocusEvent is one tracker sample: the package that held focus at Timestamp,
// credited with DurationMs of foreground time.
type FocusEvent struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Timestamp     time.Time      `gorm:"not null;index" json:"timestamp"`
	PackageID     string         `gorm:"not null;index" json:"package_id"`
	WindowTitle   string         `gorm:"not null" json:"window_title"`
	DurationMs    int64          `gorm:"not null;default:0" json:"duration_ms"`
	IsIdle        bool           `gorm:"not null;default:false" json:"is_idle"`
	IsLocked      bool           `gorm:"not null;default:false" json:"is_locked"`
	DisplayServer string         `gorm:"not null" json:"display_server"` // "x11"
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// UsageStats is the aggregated foreground time of one package over a query window.
type UsageStats struct {
	PackageID         string `json:"package_id"`
	TotalForegroundMs int64  `json:"total_foreground_ms"`
	EventCount        int    `json:"event_count"`
}
