package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending                  OrderStatus = "pending"
	StatusOnHold                   OrderStatus = "on-hold"
	StatusAwaitingCustomerApproval OrderStatus = "awaiting-customer-approval"
	StatusProcessing               OrderStatus = "processing"
	StatusCompleted                OrderStatus = "completed"
	StatusFailed                   OrderStatus = "failed"
	StatusRefunded                 OrderStatus = "refunded"
	StatusCancelled                OrderStatus = "cancelled"
)

// AllStatuses lists every status an order can hold.
var AllStatuses = []OrderStatus{
	StatusPending,
	StatusOnHold,
	StatusAwaitingCustomerApproval,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusRefunded,
	StatusCancelled,
}

// IsTerminal reports whether no trigger may mutate an order in this status.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsValid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// StatusesExcept returns AllStatuses minus terminal ones and the given exclusions.
func StatusesExcept(excluded ...OrderStatus) []OrderStatus {
	var out []OrderStatus
outer:
	for _, st := range AllStatuses {
		if st.IsTerminal() {
			continue
		}
		for _, ex := range excluded {
			if st == ex {
				continue outer
			}
		}
		out = append(out, st)
	}
	return out
}

type Order struct {
	ID               int64
	OrderKey         string
	Status           OrderStatus
	BillingEmail     string
	Currency         string
	Total            decimal.Decimal
	PaymentReference string
	PaymentIntentID  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type OrderNote struct {
	ID        int64
	OrderID   int64
	Text      string
	CreatedAt time.Time
}
