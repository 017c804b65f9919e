package webhook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
)

// Outcome is what dispatching one event did to the order store.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeFailed    Outcome = "failed"
)

const (
	noteIntentSucceededTmpl = "Stripe PaymentIntent succeeded: %s"
	noteChargeSucceededTmpl = "Stripe charge succeeded: %s"
	noteIntentFailedTmpl    = "Stripe PaymentIntent failed: %s"
)

// OrderSettler is the part of the order usecase the dispatcher drives.
type OrderSettler interface {
	MarkPaid(ctx context.Context, orderID int64, reference, note string) (bool, error)
	MarkFailed(ctx context.Context, orderID int64, note string) (bool, error)
}

// Dispatcher routes verified events to order transitions.
type Dispatcher struct {
	orders OrderSettler
	// gateway resolves charges that carry no order id; may be nil.
	gateway domain.PaymentGateway
	log     *slog.Logger
}

func NewDispatcher(orders OrderSettler, gateway domain.PaymentGateway, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{orders: orders, gateway: gateway, log: log}
}

// Dispatch applies event and returns the resolved order id (zero if none).
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.PaymentEvent) (int64, Outcome, error) {
	switch e := event.(type) {
	case domain.PaymentIntentSucceeded:
		if e.OrderID == 0 {
			d.log.Warn("payment intent without order id", "event_id", e.ID, "payment_intent_id", e.PaymentIntentID)
			return 0, OutcomeSkipped, nil
		}
		return d.markPaid(ctx, e.OrderID, e.PaymentIntentID, fmt.Sprintf(noteIntentSucceededTmpl, e.PaymentIntentID))

	case domain.ChargeSucceeded:
		orderID := e.OrderID
		if orderID == 0 {
			resolved, err := d.resolveCharge(ctx, e)
			if err != nil {
				return 0, OutcomeFailed, err
			}
			orderID = resolved
		}
		if orderID == 0 {
			d.log.Warn("charge without order id", "event_id", e.ID, "charge_id", e.ChargeID)
			return 0, OutcomeSkipped, nil
		}
		return d.markPaid(ctx, orderID, e.PaymentIntentID, fmt.Sprintf(noteChargeSucceededTmpl, e.ChargeID))

	case domain.PaymentIntentFailed:
		if e.OrderID == 0 {
			d.log.Warn("failed payment intent without order id", "event_id", e.ID, "payment_intent_id", e.PaymentIntentID)
			return 0, OutcomeSkipped, nil
		}
		applied, err := d.orders.MarkFailed(ctx, e.OrderID, fmt.Sprintf(noteIntentFailedTmpl, e.FailureMessage))
		return e.OrderID, outcomeOf(applied, err), err

	case domain.UnhandledEvent:
		d.log.Info("unhandled webhook event", "event_id", e.ID, "type", e.Type)
		return 0, OutcomeIgnored, nil
	}
	return 0, OutcomeIgnored, nil
}

func (d *Dispatcher) markPaid(ctx context.Context, orderID int64, reference, note string) (int64, Outcome, error) {
	applied, err := d.orders.MarkPaid(ctx, orderID, reference, note)
	return orderID, outcomeOf(applied, err), err
}

// resolveCharge looks the charge's payment intent up at the gateway to find
// the order id. Lookup failures are upstream errors.
func (d *Dispatcher) resolveCharge(ctx context.Context, e domain.ChargeSucceeded) (int64, error) {
	if e.PaymentIntentID == "" || d.gateway == nil {
		return 0, nil
	}
	intent, err := d.gateway.GetPaymentIntent(ctx, e.PaymentIntentID)
	if err != nil {
		return 0, domain.UpstreamError(fmt.Errorf("lookup payment intent %s: %w", e.PaymentIntentID, err))
	}
	return domain.OrderIDFromMetadata(intent.Metadata), nil
}

func outcomeOf(applied bool, err error) Outcome {
	switch {
	case err != nil:
		return OutcomeFailed
	case applied:
		return OutcomeApplied
	default:
		return OutcomeDuplicate
	}
}
