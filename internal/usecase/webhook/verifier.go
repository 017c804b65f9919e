package webhook

import (
	"errors"
	"fmt"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
)

// Verifier authenticates raw webhook deliveries through the gateway's own
// signature primitive. It never checks signatures itself.
type Verifier struct {
	constructor domain.EventConstructor
	secret      string
}

func NewVerifier(constructor domain.EventConstructor, endpointSecret string) *Verifier {
	return &Verifier{constructor: constructor, secret: endpointSecret}
}

// Verify returns the typed event for an authentic delivery. Errors carry a
// domain kind: Configuration for a missing endpoint secret, Authorization
// for a bad signature and Validation for an unreadable payload. A missing
// primitive yields ErrVerifierUnavailable with no kind.
func (v *Verifier) Verify(payload []byte, signatureHeader string) (domain.PaymentEvent, error) {
	if v == nil || v.constructor == nil {
		return nil, domain.ErrVerifierUnavailable
	}
	if v.secret == "" {
		return nil, domain.ConfigurationError(domain.ErrWebhookSecretUnset)
	}
	if signatureHeader == "" {
		return nil, domain.AuthorizationError(fmt.Errorf("%w: missing signature header", domain.ErrInvalidSignature))
	}
	if len(payload) == 0 {
		return nil, domain.ValidationError(fmt.Errorf("%w: empty body", domain.ErrInvalidPayload))
	}

	event, err := v.constructor.ConstructEvent(payload, signatureHeader, v.secret)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPayload) {
			return nil, domain.ValidationError(err)
		}
		if errors.Is(err, domain.ErrInvalidSignature) {
			return nil, domain.AuthorizationError(err)
		}
		return nil, domain.AuthorizationError(fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err))
	}
	return event, nil
}
