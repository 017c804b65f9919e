package models

import "time"

type SettingModel struct {
	Name      string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	CreatedAt time.Time
}

func (SettingModel) TableName() string {
	return "settings"
}
