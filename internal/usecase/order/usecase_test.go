package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/memory"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/metrics"
	"github.com/LavaJover/pickup-settlement-service/internal/usecase/approval"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "s3cr3t"
	testBaseURL = "https://pickup.example.com/"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(event domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Events() []domain.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.OrderEvent(nil), p.events...)
}

type fixture struct {
	repo      *memory.OrderRepository
	publisher *recordingPublisher
	metrics   *metrics.SettlementMetrics
	uc        *DefaultOrderUsecase
}

func newFixture(t *testing.T, orders ...domain.Order) *fixture {
	t.Helper()
	repo := memory.NewOrderRepository()
	for _, o := range orders {
		repo.Seed(o)
	}
	pub := &recordingPublisher{}
	m := metrics.NewSettlementMetrics(prometheus.NewRegistry())
	keyring := approval.NewKeyring(testSecret, nil, time.Time{})
	uc := NewDefaultOrderUsecase(repo, keyring, testBaseURL, pub, m, nil)
	return &fixture{repo: repo, publisher: pub, metrics: m, uc: uc}
}

func (f *fixture) order(t *testing.T, id int64) *domain.Order {
	t.Helper()
	o, err := f.repo.GetOrder(context.Background(), id)
	require.NoError(t, err)
	return o
}

func (f *fixture) notes(t *testing.T, id int64) []domain.OrderNote {
	t.Helper()
	notes, err := f.repo.ListNotes(context.Background(), id)
	require.NoError(t, err)
	return notes
}

func awaiting(id int64, key string) domain.Order {
	return domain.Order{ID: id, OrderKey: key, Status: domain.StatusAwaitingCustomerApproval, BillingEmail: "ann@example.com"}
}

func TestApproveOrder_CompletesAwaitingOrder(t *testing.T) {
	f := newFixture(t, awaiting(1001, "abc123"))
	token := approval.Issue(1001, "abc123", testSecret)

	res, err := f.uc.ApproveOrder(context.Background(), 1001, token)
	require.NoError(t, err)
	assert.False(t, res.AlreadyCompleted)
	assert.Equal(t, domain.StatusCompleted, f.order(t, 1001).Status)

	notes := f.notes(t, 1001)
	require.Len(t, notes, 1)
	assert.Equal(t, noteApproved, notes[0].Text)

	f.uc.Drain()
	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventStatusChanged, events[0].Type)
	assert.Equal(t, domain.StatusAwaitingCustomerApproval, events[0].FromStatus)
	assert.Equal(t, domain.StatusCompleted, events[0].Status)
	assert.NotEmpty(t, events[0].EventID)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StatusTransitionsTotal.WithLabelValues(
		string(TriggerCustomerApproval), string(domain.StatusAwaitingCustomerApproval), string(domain.StatusCompleted))))
}

func TestApproveOrder_ReplayIsIdempotent(t *testing.T) {
	f := newFixture(t, awaiting(1001, "abc123"))
	token := approval.Issue(1001, "abc123", testSecret)

	_, err := f.uc.ApproveOrder(context.Background(), 1001, token)
	require.NoError(t, err)

	res, err := f.uc.ApproveOrder(context.Background(), 1001, token)
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)
	assert.Len(t, f.notes(t, 1001), 1)
}

func TestApproveOrder_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		order    domain.Order
		orderID  int64
		token    string
		wantKind domain.ErrorKind
	}{
		{
			name:     "unknown order",
			order:    awaiting(1, "k"),
			orderID:  2,
			token:    approval.Issue(2, "k", testSecret),
			wantKind: domain.KindNotFound,
		},
		{
			name:     "tampered token",
			order:    awaiting(1, "k"),
			orderID:  1,
			token:    strings.Repeat("0", 64),
			wantKind: domain.KindAuthorization,
		},
		{
			name:     "token for another order",
			order:    awaiting(1, "k"),
			orderID:  1,
			token:    approval.Issue(2, "k", testSecret),
			wantKind: domain.KindAuthorization,
		},
		{
			name:     "pending order",
			order:    domain.Order{ID: 1, OrderKey: "k", Status: domain.StatusPending},
			orderID:  1,
			token:    approval.Issue(1, "k", testSecret),
			wantKind: domain.KindConflict,
		},
		{
			name:     "cancelled order",
			order:    domain.Order{ID: 1, OrderKey: "k", Status: domain.StatusCancelled},
			orderID:  1,
			token:    approval.Issue(1, "k", testSecret),
			wantKind: domain.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.order)
			_, err := f.uc.ApproveOrder(context.Background(), tt.orderID, tt.token)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			assert.Equal(t, tt.order.Status, f.order(t, tt.order.ID).Status)
			assert.Empty(t, f.notes(t, tt.order.ID))
		})
	}
}

func TestApproveOrder_NoKeyringFailsClosed(t *testing.T) {
	f := newFixture(t, awaiting(1001, "abc123"))
	f.uc.Keyring = nil

	_, err := f.uc.ApproveOrder(context.Background(), 1001, approval.Issue(1001, "abc123", testSecret))
	require.Error(t, err)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
	assert.True(t, errors.Is(err, domain.ErrSecretUnavailable))
	assert.Equal(t, domain.StatusAwaitingCustomerApproval, f.order(t, 1001).Status)
}

func TestMarkPaid_AppliesOnceAndRecordsReference(t *testing.T) {
	f := newFixture(t, domain.Order{ID: 42, OrderKey: "k", Status: domain.StatusPending})

	applied, err := f.uc.MarkPaid(context.Background(), 42, "pi_123", "Stripe PaymentIntent succeeded: pi_123")
	require.NoError(t, err)
	assert.True(t, applied)

	o := f.order(t, 42)
	assert.Equal(t, domain.StatusProcessing, o.Status)
	assert.Equal(t, "pi_123", o.PaymentReference)

	applied, err = f.uc.MarkPaid(context.Background(), 42, "pi_123", "Stripe PaymentIntent succeeded: pi_123")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Len(t, f.notes(t, 42), 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TransitionsSkippedTotal.WithLabelValues(
		string(TriggerPaymentSucceeded), string(domain.StatusProcessing))))
}

func TestMarkPaid_SkipsProcessingAndTerminal(t *testing.T) {
	for _, status := range []domain.OrderStatus{
		domain.StatusProcessing,
		domain.StatusCompleted,
		domain.StatusRefunded,
		domain.StatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t, domain.Order{ID: 7, OrderKey: "k", Status: status})
			applied, err := f.uc.MarkPaid(context.Background(), 7, "pi_x", "paid")
			require.NoError(t, err)
			assert.False(t, applied)
			assert.Equal(t, status, f.order(t, 7).Status)
			assert.Empty(t, f.notes(t, 7))
			f.uc.Drain()
			assert.Empty(t, f.publisher.Events())
		})
	}
}

func TestMarkPaid_AcceptsEveryOtherNonTerminalStatus(t *testing.T) {
	for _, status := range []domain.OrderStatus{
		domain.StatusPending,
		domain.StatusOnHold,
		domain.StatusAwaitingCustomerApproval,
		domain.StatusFailed,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t, domain.Order{ID: 7, OrderKey: "k", Status: status})
			applied, err := f.uc.MarkPaid(context.Background(), 7, "pi_x", "paid")
			require.NoError(t, err)
			assert.True(t, applied)
			assert.Equal(t, domain.StatusProcessing, f.order(t, 7).Status)
		})
	}
}

func TestMarkPaid_ConcurrentDeliveriesApplyOnce(t *testing.T) {
	f := newFixture(t, domain.Order{ID: 42, OrderKey: "k", Status: domain.StatusPending})

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applies int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied, err := f.uc.MarkPaid(context.Background(), 42, "pi_1", "paid")
			assert.NoError(t, err)
			if applied {
				mu.Lock()
				applies++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	f.uc.Drain()

	assert.Equal(t, 1, applies)
	assert.Len(t, f.notes(t, 42), 1)
	assert.Len(t, f.publisher.Events(), 1)
}

func TestMarkPaid_UnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.MarkPaid(context.Background(), 404, "pi", "paid")
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestMarkFailed(t *testing.T) {
	f := newFixture(t,
		domain.Order{ID: 1, OrderKey: "k", Status: domain.StatusProcessing},
		domain.Order{ID: 2, OrderKey: "k", Status: domain.StatusCompleted},
	)

	applied, err := f.uc.MarkFailed(context.Background(), 1, "Stripe PaymentIntent failed: card declined")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, domain.StatusFailed, f.order(t, 1).Status)

	applied, err = f.uc.MarkFailed(context.Background(), 1, "Stripe PaymentIntent failed: card declined")
	require.NoError(t, err)
	assert.False(t, applied)
	require.Len(t, f.notes(t, 1), 1)
	assert.Equal(t, "Stripe PaymentIntent failed: card declined", f.notes(t, 1)[0].Text)

	applied, err = f.uc.MarkFailed(context.Background(), 2, "late failure")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, domain.StatusCompleted, f.order(t, 2).Status)
}

func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t, domain.Order{ID: 3, OrderKey: "k", Status: domain.StatusPending})
	f.publisher.err = errors.New("broker down")

	applied, err := f.uc.MarkPaid(context.Background(), 3, "pi_3", "paid")
	require.NoError(t, err)
	assert.True(t, applied)
	f.uc.Drain()
	assert.Len(t, f.publisher.Events(), 1)
}

func TestRequestApproval_SendsLink(t *testing.T) {
	f := newFixture(t, domain.Order{ID: 1001, OrderKey: "abc123", Status: domain.StatusProcessing, BillingEmail: "ann@example.com"})

	req, err := f.uc.RequestApproval(context.Background(), 1001)
	require.NoError(t, err)
	assert.False(t, req.Resent)
	assert.Equal(t, "ann@example.com", req.Email)
	assert.Equal(t,
		"https://pickup.example.com/?approve_order=1&order_id=1001&token="+approval.Issue(1001, "abc123", testSecret),
		req.URL)
	assert.Equal(t, domain.StatusAwaitingCustomerApproval, f.order(t, 1001).Status)

	notes := f.notes(t, 1001)
	require.Len(t, notes, 1)
	assert.Equal(t, "Approval email sent to customer: ann@example.com", notes[0].Text)

	f.uc.Drain()
	var requested []domain.OrderEvent
	for _, e := range f.publisher.Events() {
		if e.Type == domain.EventApprovalRequested {
			requested = append(requested, e)
		}
	}
	require.Len(t, requested, 1)
	assert.Equal(t, req.URL, requested[0].ApprovalURL)

	// The link round-trips through approval.
	token := req.URL[strings.LastIndex(req.URL, "=")+1:]
	res, err := f.uc.ApproveOrder(context.Background(), 1001, token)
	require.NoError(t, err)
	assert.False(t, res.AlreadyCompleted)
}

func TestRequestApproval_ResendWhileAwaiting(t *testing.T) {
	f := newFixture(t, awaiting(5, "k5"))

	req, err := f.uc.RequestApproval(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, req.Resent)
	assert.Len(t, f.notes(t, 5), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ApprovalRequestsTotal.WithLabelValues("resent")))
}

func TestRequestApproval_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		order    domain.Order
		noKeys   bool
		wantKind domain.ErrorKind
	}{
		{"completed", domain.Order{ID: 1, OrderKey: "k", Status: domain.StatusCompleted, BillingEmail: "a@b.c"}, false, domain.KindConflict},
		{"failed", domain.Order{ID: 1, OrderKey: "k", Status: domain.StatusFailed, BillingEmail: "a@b.c"}, false, domain.KindConflict},
		{"no email", domain.Order{ID: 1, OrderKey: "k", Status: domain.StatusPending}, false, domain.KindValidation},
		{"no keyring", domain.Order{ID: 1, OrderKey: "k", Status: domain.StatusPending, BillingEmail: "a@b.c"}, true, domain.KindConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.order)
			if tt.noKeys {
				f.uc.Keyring = nil
			}
			_, err := f.uc.RequestApproval(context.Background(), 1)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			assert.Equal(t, tt.order.Status, f.order(t, 1).Status)
			assert.Empty(t, f.notes(t, 1))
		})
	}
}

func TestAddNote(t *testing.T) {
	f := newFixture(t, domain.Order{ID: 1, OrderKey: "k", Status: domain.StatusPending})
	require.NoError(t, f.uc.AddNote(context.Background(), 1, "called the customer"))
	assert.Len(t, f.notes(t, 1), 1)

	err := f.uc.AddNote(context.Background(), 2, "x")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
