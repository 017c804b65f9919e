package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultSettingsRepository struct {
	DB *gorm.DB
}

func NewDefaultSettingsRepository(db *gorm.DB) *DefaultSettingsRepository {
	return &DefaultSettingsRepository{DB: db}
}

func (r *DefaultSettingsRepository) GetSetting(ctx context.Context, name string) (string, error) {
	var setting models.SettingModel
	if err := r.DB.WithContext(ctx).First(&setting, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrSettingNotFound
		}
		return "", err
	}
	return setting.Value, nil
}

// PutSettingIfAbsent inserts with ON CONFLICT DO NOTHING and reads back, so two
// instances provisioning at once agree on a single value.
func (r *DefaultSettingsRepository) PutSettingIfAbsent(ctx context.Context, name, value string) (string, error) {
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SettingModel{Name: name, Value: value}).Error
	if err != nil {
		return "", err
	}
	return r.GetSetting(ctx, name)
}
