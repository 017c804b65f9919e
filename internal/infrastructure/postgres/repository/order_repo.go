package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) CreateOrder(ctx context.Context, order *domain.Order, note string) (int64, error) {
	orderModel := mappers.ToGORMOrder(order)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(orderModel).Error; err != nil {
			return err
		}
		if note == "" {
			return nil
		}
		return tx.Create(&models.OrderNoteModel{OrderID: orderModel.ID, Text: note}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}
	order.ID = orderModel.ID
	return orderModel.ID, nil
}

func (r *DefaultOrderRepository) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&order), nil
}

// TransitionStatus locks the row, then performs the guarded update
// UPDATE orders SET status = to WHERE id = ? AND status IN (from...).
// Concurrent callers racing from the same source status cannot both match.
func (r *DefaultOrderRepository) TransitionStatus(ctx context.Context, change domain.StatusChange) (domain.TransitionResult, error) {
	var result domain.TransitionResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.OrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&current, "id = ?", change.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}
		result.Previous = current.Status

		updates := map[string]interface{}{
			"status":     change.To,
			"updated_at": time.Now(),
		}
		if change.PaymentReference != "" {
			updates["payment_reference"] = change.PaymentReference
		}

		res := tx.Model(&models.OrderModel{}).
			Where("id = ? AND status IN ?", change.OrderID, change.From).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			result.Order = mappers.ToDomainOrder(&current)
			return nil
		}

		if err := tx.First(&current, "id = ?", change.OrderID).Error; err != nil {
			return err
		}
		result.Applied = true
		result.Order = mappers.ToDomainOrder(&current)
		if change.Note != "" {
			if err := tx.Create(&models.OrderNoteModel{OrderID: change.OrderID, Text: change.Note}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.TransitionResult{}, err
	}
	return result, nil
}

func (r *DefaultOrderRepository) SetPaymentIntent(ctx context.Context, orderID int64, paymentIntentID string) error {
	res := r.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Update("payment_intent_id", paymentIntentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *DefaultOrderRepository) AddNote(ctx context.Context, orderID int64, text string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.OrderModel{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrOrderNotFound
		}
		return tx.Create(&models.OrderNoteModel{OrderID: orderID, Text: text}).Error
	})
}

func (r *DefaultOrderRepository) ListNotes(ctx context.Context, orderID int64) ([]domain.OrderNote, error) {
	var noteModels []models.OrderNoteModel
	if err := r.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&noteModels).Error; err != nil {
		return nil, err
	}
	return mappers.ToDomainNotes(noteModels), nil
}
