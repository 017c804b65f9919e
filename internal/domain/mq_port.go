package domain

import "time"

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(topic string, msgs ...Message) error
}

// OrderEvent is emitted after every applied status change and after an
// approval request, for downstream mailers and dashboards.
type OrderEvent struct {
	EventID      string      `json:"event_id"`
	Type         string      `json:"type"`
	OrderID      int64       `json:"order_id"`
	FromStatus   OrderStatus `json:"from_status,omitempty"`
	Status       OrderStatus `json:"status"`
	Trigger      string      `json:"trigger"`
	BillingEmail string      `json:"billing_email,omitempty"`
	ApprovalURL  string      `json:"approval_url,omitempty"`
	Note         string      `json:"note,omitempty"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

const (
	EventStatusChanged     = "order.status_changed"
	EventApprovalRequested = "order.approval_requested"
)

type OrderEventPublisher interface {
	PublishOrderEvent(event OrderEvent) error
}
