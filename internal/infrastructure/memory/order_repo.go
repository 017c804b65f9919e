package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
)

// OrderRepository keeps orders in process memory. It backs local runs with
// order_db.driver=memory and the package tests; it offers no settings storage.
type OrderRepository struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*domain.Order
	notes  map[int64][]domain.OrderNote
	noteID int64
	now    func() time.Time
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		nextID: 1,
		orders: make(map[int64]*domain.Order),
		notes:  make(map[int64][]domain.OrderNote),
		now:    time.Now,
	}
}

// Seed stores order as-is, keeping its ID. Used to load fixtures.
func (r *OrderRepository) Seed(order domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := order
	r.orders[o.ID] = &o
	if o.ID >= r.nextID {
		r.nextID = o.ID + 1
	}
}

func (r *OrderRepository) CreateOrder(_ context.Context, order *domain.Order, note string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o := *order
	o.ID = r.nextID
	r.nextID++
	o.CreatedAt = r.now()
	o.UpdatedAt = o.CreatedAt
	r.orders[o.ID] = &o
	if note != "" {
		r.appendNoteLocked(o.ID, note)
	}
	order.ID = o.ID
	return o.ID, nil
}

func (r *OrderRepository) GetOrder(_ context.Context, orderID int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *OrderRepository) TransitionStatus(_ context.Context, change domain.StatusChange) (domain.TransitionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[change.OrderID]
	if !ok {
		return domain.TransitionResult{}, domain.ErrOrderNotFound
	}
	if !slices.Contains(change.From, o.Status) {
		cp := *o
		return domain.TransitionResult{Previous: o.Status, Order: &cp}, nil
	}

	previous := o.Status
	o.Status = change.To
	o.UpdatedAt = r.now()
	if change.PaymentReference != "" {
		o.PaymentReference = change.PaymentReference
	}
	if change.Note != "" {
		r.appendNoteLocked(o.ID, change.Note)
	}
	cp := *o
	return domain.TransitionResult{Applied: true, Previous: previous, Order: &cp}, nil
}

func (r *OrderRepository) SetPaymentIntent(_ context.Context, orderID int64, paymentIntentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.PaymentIntentID = paymentIntentID
	return nil
}

func (r *OrderRepository) AddNote(_ context.Context, orderID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[orderID]; !ok {
		return domain.ErrOrderNotFound
	}
	r.appendNoteLocked(orderID, text)
	return nil
}

func (r *OrderRepository) ListNotes(_ context.Context, orderID int64) ([]domain.OrderNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.notes[orderID]), nil
}

func (r *OrderRepository) appendNoteLocked(orderID int64, text string) {
	r.noteID++
	r.notes[orderID] = append(r.notes[orderID], domain.OrderNote{
		ID:        r.noteID,
		OrderID:   orderID,
		Text:      text,
		CreatedAt: r.now(),
	})
}
