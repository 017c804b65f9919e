package order

import (
	"context"
	"errors"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
)

type ApprovalResult struct {
	OrderID int64
	// AlreadyCompleted is set when the link was replayed after a prior approval.
	AlreadyCompleted bool
}

// ApproveOrder completes an order awaiting customer approval once the
// token proves the caller holds the link issued for it. The token is checked
// before the status so an invalid link reveals nothing about the order.
func (uc *DefaultOrderUsecase) ApproveOrder(ctx context.Context, orderID int64, token string) (*ApprovalResult, error) {
	order, err := uc.OrderRepo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, domain.NotFoundError(err)
		}
		return nil, err
	}

	if uc.Keyring == nil {
		return nil, domain.ConfigurationError(domain.ErrSecretUnavailable)
	}
	if !uc.Keyring.Verify(order.ID, order.OrderKey, token) {
		uc.Log.Warn("approval token rejected", "order_id", orderID)
		return nil, domain.AuthorizationError(domain.ErrInvalidToken)
	}

	if order.Status == domain.StatusCompleted {
		return &ApprovalResult{OrderID: orderID, AlreadyCompleted: true}, nil
	}
	if order.Status != domain.StatusAwaitingCustomerApproval {
		return nil, domain.ConflictError(domain.ErrCannotApprove)
	}

	res, err := uc.transition(ctx, TriggerCustomerApproval, domain.StatusChange{
		OrderID: orderID,
		From:    []domain.OrderStatus{domain.StatusAwaitingCustomerApproval},
		To:      domain.StatusCompleted,
		Note:    noteApproved,
	})
	if err != nil {
		return nil, err
	}
	if res.Applied {
		return &ApprovalResult{OrderID: orderID}, nil
	}

	// Lost a race: either a concurrent click completed it or the status moved.
	if res.Previous == domain.StatusCompleted {
		return &ApprovalResult{OrderID: orderID, AlreadyCompleted: true}, nil
	}
	return nil, domain.ConflictError(domain.ErrCannotApprove)
}
