package order

import (
	"context"
	"log/slog"
	"sync"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/metrics"
	"github.com/LavaJover/pickup-settlement-service/internal/usecase/approval"
)

// Trigger names the cause of a status change. It labels metrics and events.
type Trigger string

const (
	TriggerCustomerApproval Trigger = "customer_approval"
	TriggerPaymentSucceeded Trigger = "payment_succeeded"
	TriggerPaymentFailed    Trigger = "payment_failed"
	TriggerApprovalRequest  Trigger = "approval_request"
)

const (
	noteApproved         = "Customer approved the service via approval link."
	noteApprovalSentTmpl = "Approval email sent to customer: %s"
)

type OrderUsecase interface {
	ApproveOrder(ctx context.Context, orderID int64, token string) (*ApprovalResult, error)
	MarkPaid(ctx context.Context, orderID int64, reference, note string) (bool, error)
	MarkFailed(ctx context.Context, orderID int64, note string) (bool, error)
	RequestApproval(ctx context.Context, orderID int64) (*ApprovalRequest, error)
	AddNote(ctx context.Context, orderID int64, text string) error
	ListNotes(ctx context.Context, orderID int64) ([]domain.OrderNote, error)
}

type DefaultOrderUsecase struct {
	OrderRepo domain.OrderRepository
	// Keyring is nil when no signing secret could be resolved; approvals
	// and approval requests then fail closed.
	Keyring         *approval.Keyring
	ApprovalBaseURL string
	Publisher       domain.OrderEventPublisher
	Metrics         *metrics.SettlementMetrics
	Log             *slog.Logger

	inflight sync.WaitGroup
}

func NewDefaultOrderUsecase(
	orderRepo domain.OrderRepository,
	keyring *approval.Keyring,
	approvalBaseURL string,
	publisher domain.OrderEventPublisher,
	settlementMetrics *metrics.SettlementMetrics,
	log *slog.Logger,
) *DefaultOrderUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &DefaultOrderUsecase{
		OrderRepo:       orderRepo,
		Keyring:         keyring,
		ApprovalBaseURL: approvalBaseURL,
		Publisher:       publisher,
		Metrics:         settlementMetrics,
		Log:             log,
	}
}

// Drain blocks until every event publish started so far has returned.
func (uc *DefaultOrderUsecase) Drain() {
	uc.inflight.Wait()
}
