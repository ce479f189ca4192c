package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskmind/internal/model"
)

// SettingsRepository handles per-user timezone and digest-time rows.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Upsert creates or updates the single settings row of a user.
func (r *SettingsRepository) Upsert(ctx context.Context, userID int64, utcOffset, notifyHour, notifyMinute int) error {
	var settings model.UserSettings
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ?", userID).First(&settings).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"utc_offset":    utcOffset,
			"notify_hour":   notifyHour,
			"notify_minute": notifyMinute,
		}
		if err := db.Model(&settings).Updates(updates).Error; err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		return nil
	case err == gorm.ErrRecordNotFound:
		settings = model.UserSettings{
			UserID:       userID,
			UTCOffset:    utcOffset,
			NotifyHour:   notifyHour,
			NotifyMinute: notifyMinute,
		}
		if err := db.Create(&settings).Error; err != nil {
			return fmt.Errorf("create settings: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find settings: %w", err)
	}
}

func (r *SettingsRepository) Get(ctx context.Context, userID int64) (*model.UserSettings, error) {
	var settings model.UserSettings
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *SettingsRepository) ListAll(ctx context.Context) ([]model.UserSettings, error) {
	var settings []model.UserSettings
	if err := r.db.WithContext(ctx).Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}
