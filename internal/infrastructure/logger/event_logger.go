package logger

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// WebhookDelivery is one received gateway delivery and how it ended. Rows are
// the out-of-band trail for deliveries that were acknowledged despite an
// internal processing failure.
type WebhookDelivery struct {
	ID        uint   `gorm:"primaryKey"`
	EventID   string `gorm:"index"`
	EventType string `gorm:"index"`
	OrderID   int64  `gorm:"index"`
	Outcome   string `gorm:"index"`
	Error     string
	Timestamp time.Time `gorm:"index"`
}

func (WebhookDelivery) TableName() string {
	return "webhook_deliveries"
}

type DeliveryLogger interface {
	LogDelivery(ctx context.Context, delivery WebhookDelivery) error
}

type PGDeliveryLogger struct {
	db *gorm.DB
}

func NewPGDeliveryLogger(db *gorm.DB) *PGDeliveryLogger {
	return &PGDeliveryLogger{db: db}
}

func (l *PGDeliveryLogger) LogDelivery(ctx context.Context, delivery WebhookDelivery) error {
	if delivery.Timestamp.IsZero() {
		delivery.Timestamp = time.Now()
	}
	return l.db.WithContext(ctx).Create(&delivery).Error
}

// SlogDeliveryLogger writes deliveries to the process log only.
type SlogDeliveryLogger struct {
	log *slog.Logger
}

func NewSlogDeliveryLogger(log *slog.Logger) *SlogDeliveryLogger {
	return &SlogDeliveryLogger{log: log}
}

func (l *SlogDeliveryLogger) LogDelivery(_ context.Context, delivery WebhookDelivery) error {
	l.log.Info("webhook delivery",
		"event_id", delivery.EventID,
		"event_type", delivery.EventType,
		"order_id", delivery.OrderID,
		"outcome", delivery.Outcome,
		"error", delivery.Error,
	)
	return nil
}
