package order

import "github.com/LavaJover/pickup-settlement-service/internal/domain"

func (uc *DefaultOrderUsecase) recordTransition(trigger Trigger, from, to domain.OrderStatus) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordTransition(string(trigger), string(from), string(to))
}

func (uc *DefaultOrderUsecase) recordSkipped(trigger Trigger, status domain.OrderStatus) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordSkipped(string(trigger), string(status))
}

func (uc *DefaultOrderUsecase) recordApprovalRequest(outcome string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordApprovalRequest(outcome)
}
