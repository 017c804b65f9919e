package domain

// Gateway event type names the dispatcher reacts to.
const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
	EventChargeSucceeded        = "charge.succeeded"
	EventChargeUpdated          = "charge.updated"
)

// PaymentEvent is the closed set of verified gateway events. Each variant
// carries only the fields its handler needs.
type PaymentEvent interface {
	EventID() string
	EventType() string
	paymentEvent()
}

type PaymentIntentSucceeded struct {
	ID              string
	PaymentIntentID string
	// OrderID is zero when metadata has no usable order_id.
	OrderID int64
}

type ChargeSucceeded struct {
	ID              string
	Type            string
	ChargeID        string
	PaymentIntentID string
	OrderID         int64
}

type PaymentIntentFailed struct {
	ID              string
	PaymentIntentID string
	OrderID         int64
	FailureMessage  string
}

type UnhandledEvent struct {
	ID   string
	Type string
}

func (e PaymentIntentSucceeded) EventID() string   { return e.ID }
func (e PaymentIntentSucceeded) EventType() string { return EventPaymentIntentSucceeded }
func (PaymentIntentSucceeded) paymentEvent()       {}

func (e ChargeSucceeded) EventID() string   { return e.ID }
func (e ChargeSucceeded) EventType() string { return e.Type }
func (ChargeSucceeded) paymentEvent()       {}

func (e PaymentIntentFailed) EventID() string   { return e.ID }
func (e PaymentIntentFailed) EventType() string { return EventPaymentIntentFailed }
func (PaymentIntentFailed) paymentEvent()       {}

func (e UnhandledEvent) EventID() string   { return e.ID }
func (e UnhandledEvent) EventType() string { return e.Type }
func (UnhandledEvent) paymentEvent()       {}
