package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/logger"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/metrics"
)

type WebhookUsecase interface {
	HandleDelivery(ctx context.Context, payload []byte, signatureHeader string) (*DeliveryResult, error)
}

type DeliveryResult struct {
	EventID   string
	EventType string
	OrderID   int64
	Outcome   Outcome
}

type DefaultWebhookUsecase struct {
	Verifier   *Verifier
	Dispatcher *Dispatcher
	Deliveries logger.DeliveryLogger
	Metrics    *metrics.SettlementMetrics
	Log        *slog.Logger
}

func NewDefaultWebhookUsecase(
	verifier *Verifier,
	dispatcher *Dispatcher,
	deliveries logger.DeliveryLogger,
	settlementMetrics *metrics.SettlementMetrics,
	log *slog.Logger,
) *DefaultWebhookUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &DefaultWebhookUsecase{
		Verifier:   verifier,
		Dispatcher: dispatcher,
		Deliveries: deliveries,
		Metrics:    settlementMetrics,
		Log:        log,
	}
}

// HandleDelivery verifies and dispatches one delivery. Only verification
// errors are returned. Dispatch failures are logged, counted and written to
// the delivery log, and the delivery still counts as received so the
// gateway does not retry it.
func (uc *DefaultWebhookUsecase) HandleDelivery(ctx context.Context, payload []byte, signatureHeader string) (*DeliveryResult, error) {
	event, err := uc.Verifier.Verify(payload, signatureHeader)
	if err != nil {
		uc.recordRejected(domain.KindOf(err).String())
		uc.Log.Warn("webhook rejected", "error", err.Error())
		return nil, err
	}

	orderID, outcome, dispatchErr := uc.dispatch(ctx, event)
	result := &DeliveryResult{
		EventID:   event.EventID(),
		EventType: event.EventType(),
		OrderID:   orderID,
		Outcome:   outcome,
	}

	delivery := logger.WebhookDelivery{
		EventID:   result.EventID,
		EventType: result.EventType,
		OrderID:   orderID,
		Outcome:   string(outcome),
		Timestamp: time.Now(),
	}
	if dispatchErr != nil {
		delivery.Error = dispatchErr.Error()
		uc.recordDispatchFailure(result.EventType)
		uc.Log.Error("webhook dispatch failed",
			"event_id", result.EventID,
			"event_type", result.EventType,
			"order_id", orderID,
			"kind", domain.KindOf(dispatchErr).String(),
			"error", dispatchErr.Error(),
		)
	} else {
		uc.Log.Info("webhook processed",
			"event_id", result.EventID,
			"event_type", result.EventType,
			"order_id", orderID,
			"outcome", outcome,
		)
	}
	uc.recordEvent(result.EventType, string(outcome))

	if uc.Deliveries != nil {
		if err := uc.Deliveries.LogDelivery(ctx, delivery); err != nil {
			uc.Log.Error("failed to log webhook delivery", "event_id", result.EventID, "error", err.Error())
		}
	}
	return result, nil
}

// dispatch turns a panic inside the dispatcher into a failed outcome, so a
// verified delivery is still acknowledged.
func (uc *DefaultWebhookUsecase) dispatch(ctx context.Context, event domain.PaymentEvent) (orderID int64, outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeFailed
			err = fmt.Errorf("dispatch panic: %v", r)
		}
	}()
	return uc.Dispatcher.Dispatch(ctx, event)
}

func (uc *DefaultWebhookUsecase) recordRejected(reason string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordWebhookRejected(reason)
}

func (uc *DefaultWebhookUsecase) recordDispatchFailure(eventType string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordWebhookDispatchFailure(eventType)
}

func (uc *DefaultWebhookUsecase) recordEvent(eventType, outcome string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordWebhookEvent(eventType, outcome)
}
