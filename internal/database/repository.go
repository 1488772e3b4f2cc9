package database

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/actionsum/appusage/internal/access"
	"github.com/actionsum/appusage/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles all database operations for focus events and access modes
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new focus event into the database
func (r *Repository) Create(event *models.FocusEvent) error {
	event.PackageID = strings.ToLower(event.PackageID)
	event.Timestamp = event.Timestamp.UTC()
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert focus event")
	}
	return nil
}

// GetEventsSince retrieves all focus events since a given time
func (r *Repository) GetEventsSince(since time.Time) ([]*models.FocusEvent, error) {
	var events []*models.FocusEvent
	result := r.db.Where("timestamp >= ?", since.UTC()).Order("timestamp ASC").Find(&events)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query focus events")
	}

	return events, nil
}

// QueryAndAggregateUsageStats sums the foreground time of every package whose
// samples fall inside [begin, end]. Idle and locked samples never count.
func (r *Repository) QueryAndAggregateUsageStats(ctx context.Context, begin, end time.Time) (map[string]models.UsageStats, error) {
	var rows []models.UsageStats

	result := r.db.WithContext(ctx).Model(&models.FocusEvent{}).
		Select("package_id, SUM(duration_ms) as total_foreground_ms, COUNT(*) as event_count").
		Where("timestamp >= ? AND timestamp <= ?", begin.UTC(), end.UTC()).
		Where("is_idle = ? AND is_locked = ?", false, false).
		Group("package_id").
		Scan(&rows)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to aggregate usage stats")
	}

	stats := make(map[string]models.UsageStats, len(rows))
	for _, row := range rows {
		stats[row.PackageID] = row
	}
	return stats, nil
}

// APILevel reports the platform level stamped into the store by Initialize.
func (r *Repository) APILevel(ctx context.Context) (int, error) {
	var meta models.StoreMeta
	result := r.db.WithContext(ctx).Where("name = ?", metaAPILevel).Limit(1).Find(&meta)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to read store api level")
	}
	if result.RowsAffected == 0 {
		return LegacyAPILevel, nil
	}

	level, err := strconv.Atoi(meta.Value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid store api level %q", meta.Value)
	}
	return level, nil
}

// CheckOpNoThrow returns the mode recorded for the identity, or
// access.ModeDefault when nothing was ever recorded.
func (r *Repository) CheckOpNoThrow(ctx context.Context, op string, uid int, pkg string) (access.Mode, error) {
	var row models.AccessMode
	result := r.db.WithContext(ctx).
		Where("op = ? AND uid = ? AND package = ?", op, uid, pkg).
		Limit(1).
		Find(&row)
	if result.Error != nil {
		return access.ModeErrored, errors.Wrap(result.Error, "failed to check operation mode")
	}
	if result.RowsAffected == 0 {
		return access.ModeDefault, nil
	}
	return access.Mode(row.Mode), nil
}

// SetMode records the mode for the identity, replacing any previous value.
func (r *Repository) SetMode(ctx context.Context, op string, uid int, pkg string, mode access.Mode) error {
	row := models.AccessMode{Op: op, UID: uid, Package: pkg, Mode: int(mode)}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "op"}, {Name: "uid"}, {Name: "package"}},
		DoUpdates: clause.AssignmentColumns([]string{"mode", "updated_at"}),
	}).Create(&row)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to set operation mode")
	}
	return nil
}

// DeleteOldEvents deletes events older than a specified date (soft delete)
func (r *Repository) DeleteOldEvents(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before.UTC()).Delete(&models.FocusEvent{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old events")
	}
	return result.RowsAffected, nil
}

// GetLatest retrieves the most recent focus event
func (r *Repository) GetLatest() (*models.FocusEvent, error) {
	var event models.FocusEvent
	result := r.db.Order("timestamp DESC").First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest event")
	}
	return &event, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// Clear removes all focus events from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM focus_events")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear focus events")
	}
	return nil
}
