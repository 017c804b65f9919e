package domain

import (
	"context"
	"strconv"
	"strings"
)

// MetadataOrderID is the metadata key that links a gateway object to an order.
const MetadataOrderID = "order_id"

type PaymentIntentRequest struct {
	AmountMinor  int64
	Currency     string
	ReceiptEmail string
	Metadata     map[string]string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Metadata     map[string]string
}

// PaymentGateway is the outbound side of the payment provider.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)
}

// EventConstructor is the provider primitive that authenticates a webhook
// delivery and converts it into a PaymentEvent. Implementations return
// ErrInvalidSignature or ErrInvalidPayload on rejection.
type EventConstructor interface {
	ConstructEvent(payload []byte, signatureHeader, secret string) (PaymentEvent, error)
}

// OrderIDFromMetadata returns the positive order id stored under
// MetadataOrderID, or zero when it is absent or malformed.
func OrderIDFromMetadata(metadata map[string]string) int64 {
	raw := strings.TrimSpace(metadata[MetadataOrderID])
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
