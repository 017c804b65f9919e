package mappers

import (
	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/postgres/models"
)

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	return &domain.Order{
		ID:               model.ID,
		OrderKey:         model.OrderKey,
		Status:           model.Status,
		BillingEmail:     model.BillingEmail,
		Currency:         model.Currency,
		Total:            model.Total,
		PaymentReference: model.PaymentReference,
		PaymentIntentID:  model.PaymentIntentID,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:               order.ID,
		OrderKey:         order.OrderKey,
		Status:           order.Status,
		BillingEmail:     order.BillingEmail,
		Currency:         order.Currency,
		Total:            order.Total,
		PaymentReference: order.PaymentReference,
		PaymentIntentID:  order.PaymentIntentID,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

func ToDomainNotes(noteModels []models.OrderNoteModel) []domain.OrderNote {
	notes := make([]domain.OrderNote, len(noteModels))
	for i, n := range noteModels {
		notes[i] = domain.OrderNote{
			ID:        n.ID,
			OrderID:   n.OrderID,
			Text:      n.Text,
			CreatedAt: n.CreatedAt,
		}
	}
	return notes
}
