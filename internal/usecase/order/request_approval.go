package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/usecase/approval"
)

var errNoBillingEmail = errors.New("order has no billing email")

// ApprovalRequest describes the approval link handed to the mailer.
type ApprovalRequest struct {
	OrderID int64
	Email   string
	URL     string
	// Resent is set when the order was already awaiting approval.
	Resent bool
}

var approvalRequestSources = []domain.OrderStatus{
	domain.StatusPending,
	domain.StatusOnHold,
	domain.StatusProcessing,
}

// RequestApproval moves the order to awaiting-customer-approval and emits an
// approval-requested event carrying the signed link. Asking again while the
// order is still awaiting approval resends the link.
func (uc *DefaultOrderUsecase) RequestApproval(ctx context.Context, orderID int64) (*ApprovalRequest, error) {
	order, err := uc.OrderRepo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, domain.NotFoundError(err)
		}
		return nil, err
	}
	if order.BillingEmail == "" {
		uc.recordApprovalRequest("rejected")
		return nil, domain.ValidationError(errNoBillingEmail)
	}
	if uc.Keyring == nil {
		uc.recordApprovalRequest("unconfigured")
		return nil, domain.ConfigurationError(domain.ErrSecretUnavailable)
	}

	link, err := approval.URL(uc.ApprovalBaseURL, order.ID, uc.Keyring.Issue(order.ID, order.OrderKey))
	if err != nil {
		return nil, domain.ConfigurationError(err)
	}
	note := fmt.Sprintf(noteApprovalSentTmpl, order.BillingEmail)
	req := &ApprovalRequest{OrderID: order.ID, Email: order.BillingEmail, URL: link}

	res, err := uc.transition(ctx, TriggerApprovalRequest, domain.StatusChange{
		OrderID: order.ID,
		From:    approvalRequestSources,
		To:      domain.StatusAwaitingCustomerApproval,
		Note:    note,
	})
	if err != nil {
		return nil, err
	}
	if !res.Applied {
		if res.Previous != domain.StatusAwaitingCustomerApproval {
			uc.recordApprovalRequest("rejected")
			return nil, domain.ConflictError(domain.ErrCannotRequestApproval)
		}
		if err := uc.AddNote(ctx, order.ID, note); err != nil {
			return nil, err
		}
		req.Resent = true
	}

	uc.publish(domain.OrderEvent{
		Type:         domain.EventApprovalRequested,
		OrderID:      order.ID,
		Status:       domain.StatusAwaitingCustomerApproval,
		Trigger:      string(TriggerApprovalRequest),
		BillingEmail: order.BillingEmail,
		ApprovalURL:  link,
		Note:         note,
	})
	if req.Resent {
		uc.recordApprovalRequest("resent")
	} else {
		uc.recordApprovalRequest("sent")
	}
	return req, nil
}
