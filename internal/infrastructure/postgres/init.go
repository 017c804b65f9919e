package postgres

import (
	"fmt"
	"log"

	"github.com/LavaJover/pickup-settlement-service/internal/config"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/logger"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/migrate"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *config.SettlementConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.OrderDB.Dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if cfg.OrderDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.OrderDB.MigrationsPath); err != nil {
			return nil, err
		}
		return db, nil
	}

	if err := db.AutoMigrate(
		&models.OrderModel{},
		&models.OrderNoteModel{},
		&models.SettingModel{},
		&logger.WebhookDelivery{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}

func MustInitDB(cfg *config.SettlementConfig) *gorm.DB {
	db, err := InitDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}
	return db
}
