package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway talks to the Stripe API with one secret key.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway builds a client for secretKey. Nil backends selects the
// default Stripe endpoints.
func NewStripeGateway(secretKey string, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, backends)}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, req domain.PaymentIntentRequest) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(req.Currency),
	}
	params.Context = ctx
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return toDomainIntent(pi), nil
}

func (g *StripeGateway) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get payment intent: %w", err)
	}
	return toDomainIntent(pi), nil
}

func toDomainIntent(pi *stripe.PaymentIntent) *domain.PaymentIntent {
	return &domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Metadata:     pi.Metadata,
	}
}

// StripeEvents authenticates webhook deliveries with stripe-go's signature
// check and maps them onto domain.PaymentEvent.
type StripeEvents struct{}

func (StripeEvents) ConstructEvent(payload []byte, signatureHeader, secret string) (domain.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return toPaymentEvent(event)
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

func toPaymentEvent(event stripe.Event) (domain.PaymentEvent, error) {
	eventType := string(event.Type)
	if event.Data == nil {
		return nil, fmt.Errorf("%w: event %s has no data", domain.ErrInvalidPayload, event.ID)
	}

	switch eventType {
	case domain.EventPaymentIntentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
		return domain.PaymentIntentSucceeded{
			ID:              event.ID,
			PaymentIntentID: pi.ID,
			OrderID:         domain.OrderIDFromMetadata(pi.Metadata),
		}, nil

	case domain.EventPaymentIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
		failed := domain.PaymentIntentFailed{
			ID:              event.ID,
			PaymentIntentID: pi.ID,
			OrderID:         domain.OrderIDFromMetadata(pi.Metadata),
		}
		if pi.LastPaymentError != nil {
			failed.FailureMessage = pi.LastPaymentError.Msg
		}
		return failed, nil

	case domain.EventChargeSucceeded, domain.EventChargeUpdated:
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
		charge := domain.ChargeSucceeded{
			ID:       event.ID,
			Type:     eventType,
			ChargeID: ch.ID,
			OrderID:  domain.OrderIDFromMetadata(ch.Metadata),
		}
		if ch.PaymentIntent != nil {
			charge.PaymentIntentID = ch.PaymentIntent.ID
		}
		return charge, nil
	}

	return domain.UnhandledEvent{ID: event.ID, Type: eventType}, nil
}
