package order

import (
	"context"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
)

// MarkPaid moves the order to processing and stores the gateway reference.
// Orders already processing or in a terminal status are left alone, which
// absorbs duplicate webhook deliveries. The bool reports whether it applied.
func (uc *DefaultOrderUsecase) MarkPaid(ctx context.Context, orderID int64, reference, note string) (bool, error) {
	res, err := uc.transition(ctx, TriggerPaymentSucceeded, domain.StatusChange{
		OrderID:          orderID,
		From:             domain.StatusesExcept(domain.StatusProcessing),
		To:               domain.StatusProcessing,
		Note:             note,
		PaymentReference: reference,
	})
	if err != nil {
		return false, err
	}
	return res.Applied, nil
}

// MarkFailed moves any non-terminal order to failed. An order that is
// already failed is not touched again.
func (uc *DefaultOrderUsecase) MarkFailed(ctx context.Context, orderID int64, note string) (bool, error) {
	res, err := uc.transition(ctx, TriggerPaymentFailed, domain.StatusChange{
		OrderID: orderID,
		From:    domain.StatusesExcept(domain.StatusFailed),
		To:      domain.StatusFailed,
		Note:    note,
	})
	if err != nil {
		return false, err
	}
	return res.Applied, nil
}
