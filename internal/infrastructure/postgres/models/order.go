package models

import (
	"time"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderModel struct {
	ID               int64              `gorm:"primaryKey;autoIncrement"`
	OrderKey         string             `gorm:"uniqueIndex;not null"`
	Status           domain.OrderStatus `gorm:"index;not null"`
	BillingEmail     string
	Currency         string          `gorm:"size:3"`
	Total            decimal.Decimal `gorm:"type:numeric(14,4)"`
	PaymentReference string
	PaymentIntentID  string    `gorm:"index"`
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time
	Notes            []OrderNoteModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderModel) TableName() string {
	return "orders"
}
