package domain

import "context"

// StatusChange describes a conditional status update: the order moves to To
// only if its current status is one of From. Note is appended in the same
// atomic operation when the change applies.
type StatusChange struct {
	OrderID          int64
	From             []OrderStatus
	To               OrderStatus
	Note             string
	PaymentReference string
}

// TransitionResult reports whether the change applied. Previous is the
// status observed before the call in both cases.
type TransitionResult struct {
	Applied  bool
	Previous OrderStatus
	Order    *Order
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order, note string) (int64, error)
	GetOrder(ctx context.Context, orderID int64) (*Order, error)
	TransitionStatus(ctx context.Context, change StatusChange) (TransitionResult, error)
	SetPaymentIntent(ctx context.Context, orderID int64, paymentIntentID string) error
	AddNote(ctx context.Context, orderID int64, text string) error
	ListNotes(ctx context.Context, orderID int64) ([]OrderNote, error)
}

// SettingsRepository persists small operator values such as the generated
// approval signing secret.
type SettingsRepository interface {
	GetSetting(ctx context.Context, name string) (string, error)
	// PutSettingIfAbsent stores value unless name already exists and returns
	// the value that ends up stored.
	PutSettingIfAbsent(ctx context.Context, name, value string) (string, error)
}
