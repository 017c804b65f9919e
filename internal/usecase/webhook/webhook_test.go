package webhook

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/logger"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/memory"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/metrics"
	"github.com/LavaJover/pickup-settlement-service/internal/usecase/order"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const endpointSecret = "whsec_test"

// stubConstructor returns a fixed event once the secret matches.
type stubConstructor struct {
	event domain.PaymentEvent
	err   error
}

func (c *stubConstructor) ConstructEvent(_ []byte, _ string, secret string) (domain.PaymentEvent, error) {
	if secret != endpointSecret {
		return nil, domain.ErrInvalidSignature
	}
	return c.event, c.err
}

type lookupGateway struct {
	intents map[string]*domain.PaymentIntent
	err     error
	panics  bool
	calls   int
}

func (g *lookupGateway) CreatePaymentIntent(context.Context, domain.PaymentIntentRequest) (*domain.PaymentIntent, error) {
	return nil, errors.New("not implemented")
}

func (g *lookupGateway) GetPaymentIntent(_ context.Context, id string) (*domain.PaymentIntent, error) {
	g.calls++
	if g.panics {
		panic("nil pointer in payment intent lookup")
	}
	if g.err != nil {
		return nil, g.err
	}
	pi, ok := g.intents[id]
	if !ok {
		return nil, errors.New("no such payment_intent")
	}
	return pi, nil
}

type memoryDeliveries struct {
	mu   sync.Mutex
	rows []logger.WebhookDelivery
}

func (l *memoryDeliveries) LogDelivery(_ context.Context, d logger.WebhookDelivery) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, d)
	return nil
}

type harness struct {
	repo        *memory.OrderRepository
	constructor *stubConstructor
	gateway     *lookupGateway
	deliveries  *memoryDeliveries
	metrics     *metrics.SettlementMetrics
	uc          *DefaultWebhookUsecase
}

func newHarness(t *testing.T, orders ...domain.Order) *harness {
	t.Helper()
	repo := memory.NewOrderRepository()
	for _, o := range orders {
		repo.Seed(o)
	}
	m := metrics.NewSettlementMetrics(prometheus.NewRegistry())
	settler := order.NewDefaultOrderUsecase(repo, nil, "", nil, m, nil)
	h := &harness{
		repo:        repo,
		constructor: &stubConstructor{},
		gateway:     &lookupGateway{intents: map[string]*domain.PaymentIntent{}},
		deliveries:  &memoryDeliveries{},
		metrics:     m,
	}
	h.uc = NewDefaultWebhookUsecase(
		NewVerifier(h.constructor, endpointSecret),
		NewDispatcher(settler, h.gateway, nil),
		h.deliveries,
		m,
		nil,
	)
	return h
}

func (h *harness) deliver(t *testing.T, event domain.PaymentEvent) *DeliveryResult {
	t.Helper()
	h.constructor.event = event
	res, err := h.uc.HandleDelivery(context.Background(), []byte(`{}`), "t=1,v1=abc")
	require.NoError(t, err)
	return res
}

func (h *harness) status(t *testing.T, id int64) domain.OrderStatus {
	t.Helper()
	o, err := h.repo.GetOrder(context.Background(), id)
	require.NoError(t, err)
	return o.Status
}

func (h *harness) notes(t *testing.T, id int64) []domain.OrderNote {
	t.Helper()
	notes, err := h.repo.ListNotes(context.Background(), id)
	require.NoError(t, err)
	return notes
}

func TestPaymentIntentSucceeded_RedeliveryIsNoOp(t *testing.T) {
	h := newHarness(t, domain.Order{ID: 42, OrderKey: "k", Status: domain.StatusPending})
	event := domain.PaymentIntentSucceeded{ID: "evt_1", PaymentIntentID: "pi_42", OrderID: 42}

	res := h.deliver(t, event)
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, domain.StatusProcessing, h.status(t, 42))
	notes := h.notes(t, 42)
	require.Len(t, notes, 1)
	assert.Equal(t, "Stripe PaymentIntent succeeded: pi_42", notes[0].Text)

	res = h.deliver(t, event)
	assert.Equal(t, OutcomeDuplicate, res.Outcome)
	assert.Equal(t, domain.StatusProcessing, h.status(t, 42))
	assert.Len(t, h.notes(t, 42), 1)

	require.Len(t, h.deliveries.rows, 2)
	assert.Equal(t, "applied", h.deliveries.rows[0].Outcome)
	assert.Equal(t, "duplicate", h.deliveries.rows[1].Outcome)
}

func TestChargeSucceeded_UsesMetadataOrderID(t *testing.T) {
	h := newHarness(t, domain.Order{ID: 9, OrderKey: "k", Status: domain.StatusOnHold})

	res := h.deliver(t, domain.ChargeSucceeded{
		ID: "evt_2", Type: domain.EventChargeSucceeded, ChargeID: "ch_9", PaymentIntentID: "pi_9", OrderID: 9,
	})
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, 0, h.gateway.calls)

	o, err := h.repo.GetOrder(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "pi_9", o.PaymentReference)
	assert.Equal(t, "Stripe charge succeeded: ch_9", h.notes(t, 9)[0].Text)
}

func TestChargeSucceeded_FallsBackToPaymentIntentLookup(t *testing.T) {
	h := newHarness(t, domain.Order{ID: 77, OrderKey: "k", Status: domain.StatusPending})
	h.gateway.intents["pi_77"] = &domain.PaymentIntent{ID: "pi_77", Metadata: map[string]string{"order_id": "77"}}

	res := h.deliver(t, domain.ChargeSucceeded{
		ID: "evt_3", Type: domain.EventChargeUpdated, ChargeID: "ch_77", PaymentIntentID: "pi_77",
	})
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, int64(77), res.OrderID)
	assert.Equal(t, 1, h.gateway.calls)
	assert.Equal(t, domain.StatusProcessing, h.status(t, 77))
}

func TestChargeSucceeded_LookupFailureIsAcknowledged(t *testing.T) {
	h := newHarness(t, domain.Order{ID: 77, OrderKey: "k", Status: domain.StatusPending})
	h.gateway.err = errors.New("gateway timeout")

	res := h.deliver(t, domain.ChargeSucceeded{
		ID: "evt_4", Type: domain.EventChargeSucceeded, ChargeID: "ch_77", PaymentIntentID: "pi_77",
	})
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, domain.StatusPending, h.status(t, 77))
	assert.Empty(t, h.notes(t, 77))

	require.Len(t, h.deliveries.rows, 1)
	assert.Contains(t, h.deliveries.rows[0].Error, "gateway timeout")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.WebhookDispatchFailuresTotal.WithLabelValues(domain.EventChargeSucceeded)))
}

func TestDispatchPanicIsAcknowledged(t *testing.T) {
	h := newHarness(t, domain.Order{ID: 77, OrderKey: "k", Status: domain.StatusPending})
	h.gateway.panics = true

	res := h.deliver(t, domain.ChargeSucceeded{
		ID: "evt_9", Type: domain.EventChargeSucceeded, ChargeID: "ch_77", PaymentIntentID: "pi_77",
	})
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, "evt_9", res.EventID)
	assert.Equal(t, domain.StatusPending, h.status(t, 77))

	require.Len(t, h.deliveries.rows, 1)
	assert.Contains(t, h.deliveries.rows[0].Error, "dispatch panic")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.WebhookDispatchFailuresTotal.WithLabelValues(domain.EventChargeSucceeded)))
}

func TestChargeSucceeded_NoOrderReference(t *testing.T) {
	h := newHarness(t)
	res := h.deliver(t, domain.ChargeSucceeded{ID: "evt_5", Type: domain.EventChargeSucceeded, ChargeID: "ch_x"})
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.Equal(t, 0, h.gateway.calls)
}

func TestPaymentIntentFailed_MarksFailedWithReason(t *testing.T) {
	h := newHarness(t, domain.Order{ID: 5, OrderKey: "k", Status: domain.StatusPending})

	res := h.deliver(t, domain.PaymentIntentFailed{
		ID: "evt_6", PaymentIntentID: "pi_5", OrderID: 5, FailureMessage: "Your card was declined.",
	})
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.Equal(t, domain.StatusFailed, h.status(t, 5))
	assert.Equal(t, "Stripe PaymentIntent failed: Your card was declined.", h.notes(t, 5)[0].Text)
}

func TestUnknownOrderIsAcknowledged(t *testing.T) {
	h := newHarness(t)
	res := h.deliver(t, domain.PaymentIntentSucceeded{ID: "evt_7", PaymentIntentID: "pi", OrderID: 404})
	assert.Equal(t, OutcomeFailed, res.Outcome)
	require.Len(t, h.deliveries.rows, 1)
	assert.NotEmpty(t, h.deliveries.rows[0].Error)
}

func TestUnhandledEventIsIgnored(t *testing.T) {
	h := newHarness(t)
	res := h.deliver(t, domain.UnhandledEvent{ID: "evt_8", Type: "customer.created"})
	assert.Equal(t, OutcomeIgnored, res.Outcome)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.WebhookEventsTotal.WithLabelValues("customer.created", "ignored")))
}

func TestVerify_Errors(t *testing.T) {
	tests := []struct {
		name     string
		verifier *Verifier
		payload  []byte
		header   string
		wantKind domain.ErrorKind
		wantErr  error
	}{
		{"no primitive", NewVerifier(nil, endpointSecret), []byte(`{}`), "sig", domain.KindInternal, domain.ErrVerifierUnavailable},
		{"nil verifier", nil, []byte(`{}`), "sig", domain.KindInternal, domain.ErrVerifierUnavailable},
		{"no secret", NewVerifier(&stubConstructor{}, ""), []byte(`{}`), "sig", domain.KindConfiguration, domain.ErrWebhookSecretUnset},
		{"no header", NewVerifier(&stubConstructor{}, endpointSecret), []byte(`{}`), "", domain.KindAuthorization, domain.ErrInvalidSignature},
		{"empty body", NewVerifier(&stubConstructor{}, endpointSecret), nil, "sig", domain.KindValidation, domain.ErrInvalidPayload},
		{"wrong secret", NewVerifier(&stubConstructor{}, "whsec_other"), []byte(`{}`), "sig", domain.KindAuthorization, domain.ErrInvalidSignature},
		{"bad payload", NewVerifier(&stubConstructor{err: domain.ErrInvalidPayload}, endpointSecret), []byte(`{`), "sig", domain.KindValidation, domain.ErrInvalidPayload},
		{"opaque failure", NewVerifier(&stubConstructor{err: errors.New("timestamp too old")}, endpointSecret), []byte(`{}`), "sig", domain.KindAuthorization, domain.ErrInvalidSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.verifier.Verify(tt.payload, tt.header)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRejectedDeliveryTouchesNothing(t *testing.T) {
	h := newHarness(t, domain.Order{ID: 42, OrderKey: "k", Status: domain.StatusPending})
	h.uc.Verifier = NewVerifier(h.constructor, "whsec_other")
	h.constructor.event = domain.PaymentIntentSucceeded{ID: "evt", PaymentIntentID: "pi", OrderID: 42}

	_, err := h.uc.HandleDelivery(context.Background(), []byte(`{}`), "t=1,v1=abc")
	require.Error(t, err)
	assert.Equal(t, domain.StatusPending, h.status(t, 42))
	assert.Empty(t, h.deliveries.rows)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.WebhookRejectedTotal.WithLabelValues("authorization")))
}
