package setup

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/LavaJover/pickup-settlement-service/internal/config"
	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	publisher "github.com/LavaJover/pickup-settlement-service/internal/infrastructure/kafka"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/logger"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/memory"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/notifier"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/postgres"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/postgres/repository"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config         *config.SettlementConfig
	DB             *gorm.DB
	OrderPublisher domain.OrderEventPublisher
	Deliveries     logger.DeliveryLogger
	Repositories   *Repositories

	closers []func() error
}

type Repositories struct {
	OrderRepo domain.OrderRepository
	// SettingsRepo is nil for the memory driver.
	SettingsRepo domain.SettingsRepository
}

func InitializeDependencies(cfg *config.SettlementConfig, log *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg}

	switch strings.ToLower(cfg.OrderDB.Driver) {
	case "memory":
		log.Warn("using in-memory order store; data is lost on restart")
		deps.Repositories = &Repositories{OrderRepo: memory.NewOrderRepository()}
		deps.Deliveries = logger.NewSlogDeliveryLogger(log)
	case "postgres", "":
		db, err := postgres.InitDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("order db: %w", err)
		}
		deps.DB = db
		deps.Repositories = &Repositories{
			OrderRepo:    repository.NewDefaultOrderRepository(db),
			SettingsRepo: repository.NewDefaultSettingsRepository(db),
		}
		deps.Deliveries = logger.NewPGDeliveryLogger(db)
		if sqlDB, err := db.DB(); err == nil {
			deps.closers = append(deps.closers, sqlDB.Close)
		}
	default:
		return nil, fmt.Errorf("unknown order_db.driver %q", cfg.OrderDB.Driver)
	}

	deps.OrderPublisher = initOrderPublisher(deps, log)
	return deps, nil
}

func initOrderPublisher(deps *Dependencies, log *slog.Logger) domain.OrderEventPublisher {
	cfg := deps.Config

	var sinks publisher.FanoutPublisher
	if cfg.KafkaService.Enabled {
		kafkaPublisher := publisher.NewDefaultKafkaPublisher(cfg.KafkaBrokers())
		deps.closers = append(deps.closers, kafkaPublisher.Close)
		sinks = append(sinks, publisher.NewOrderEventPublisher(kafkaPublisher, cfg.KafkaService.Topic))
	}
	if cfg.Notifier.CallbackURL != "" {
		sinks = append(sinks, notifier.NewCallbackNotifier(cfg.Notifier.CallbackURL, cfg.Notifier.Timeout))
	}

	switch len(sinks) {
	case 0:
		log.Info("kafka and callback disabled; order events go to the log")
		return publisher.NewLogOrderEventPublisher(log)
	case 1:
		return sinks[0]
	default:
		return sinks
	}
}

// Close releases connections in reverse order of creation.
func (d *Dependencies) Close() error {
	var firstErr error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
