package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/google/uuid"
)

// transition runs the guarded update and, when it applies, reports the
// change. The note is written by the repository in the same transaction.
func (uc *DefaultOrderUsecase) transition(ctx context.Context, trigger Trigger, change domain.StatusChange) (domain.TransitionResult, error) {
	res, err := uc.OrderRepo.TransitionStatus(ctx, change)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return res, domain.NotFoundError(err)
		}
		return res, fmt.Errorf("transition order %d to %s: %w", change.OrderID, change.To, err)
	}

	if !res.Applied {
		uc.recordSkipped(trigger, res.Previous)
		uc.Log.Info("order status left unchanged",
			"order_id", change.OrderID,
			"trigger", trigger,
			"status", res.Previous,
		)
		return res, nil
	}

	uc.recordTransition(trigger, res.Previous, change.To)
	uc.Log.Info("order status changed",
		"order_id", change.OrderID,
		"trigger", trigger,
		"from", res.Previous,
		"to", change.To,
	)

	event := domain.OrderEvent{
		Type:       domain.EventStatusChanged,
		OrderID:    change.OrderID,
		FromStatus: res.Previous,
		Status:     change.To,
		Trigger:    string(trigger),
		Note:       change.Note,
	}
	if res.Order != nil {
		event.BillingEmail = res.Order.BillingEmail
	}
	uc.publish(event)

	return res, nil
}

// publish sends the event in the background. Failures are logged only.
func (uc *DefaultOrderUsecase) publish(event domain.OrderEvent) {
	if uc.Publisher == nil {
		return
	}
	event.EventID = uuid.NewString()
	event.OccurredAt = time.Now().UTC()

	uc.inflight.Add(1)
	go func(event domain.OrderEvent) {
		defer uc.inflight.Done()
		if err := uc.Publisher.PublishOrderEvent(event); err != nil {
			uc.Log.Error("failed to publish kafka OrderEvent",
				"order_id", event.OrderID,
				"type", event.Type,
				"error", err.Error(),
			)
		}
	}(event)
}
