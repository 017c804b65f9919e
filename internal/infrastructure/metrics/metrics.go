package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SettlementMetrics holds every collector the settlement core reports.
type SettlementMetrics struct {
	// Applied status changes
	StatusTransitionsTotal *prometheus.CounterVec
	// Triggers that found the order outside the allowed source statuses
	TransitionsSkippedTotal *prometheus.CounterVec

	ApprovalRequestsTotal *prometheus.CounterVec

	WebhookEventsTotal *prometheus.CounterVec
	// Deliveries acknowledged with 200 although dispatch failed; alert on this
	WebhookDispatchFailuresTotal *prometheus.CounterVec
	WebhookRejectedTotal         *prometheus.CounterVec

	PaymentIntentsCreatedTotal *prometheus.CounterVec
	PaymentIntentAmountMinor   *prometheus.HistogramVec
	GatewayErrorsTotal         *prometheus.CounterVec
}

// NewSettlementMetrics registers collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	factory := promauto.With(reg)
	return &SettlementMetrics{
		StatusTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_status_transitions_total",
				Help: "Applied order status transitions",
			},
			[]string{"trigger", "from", "to"},
		),

		TransitionsSkippedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_status_transitions_skipped_total",
				Help: "Triggers that left the order untouched because of its current status",
			},
			[]string{"trigger", "status"},
		),

		ApprovalRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_approval_requests_total",
				Help: "Approval link requests by outcome",
			},
			[]string{"outcome"},
		),

		WebhookEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_total",
				Help: "Verified gateway webhook events by type and outcome",
			},
			[]string{"type", "outcome"},
		),

		WebhookDispatchFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_dispatch_failures_total",
				Help: "Webhook deliveries acknowledged despite an internal dispatch error",
			},
			[]string{"type"},
		),

		WebhookRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_rejected_total",
				Help: "Webhook deliveries rejected before dispatch",
			},
			[]string{"reason"},
		),

		PaymentIntentsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_intents_created_total",
				Help: "Payment intents created at the gateway",
			},
			[]string{"currency"},
		),

		PaymentIntentAmountMinor: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payment_intent_amount_minor_units",
				Help:    "Requested charge amount in minor units",
				Buckets: prometheus.ExponentialBuckets(100, 4, 10),
			},
			[]string{"currency"},
		),

		GatewayErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_gateway_errors_total",
				Help: "Failed calls to the payment gateway",
			},
			[]string{"operation"},
		),
	}
}

func (m *SettlementMetrics) RecordTransition(trigger, from, to string) {
	m.StatusTransitionsTotal.WithLabelValues(trigger, from, to).Inc()
}

func (m *SettlementMetrics) RecordSkipped(trigger, status string) {
	m.TransitionsSkippedTotal.WithLabelValues(trigger, status).Inc()
}

func (m *SettlementMetrics) RecordApprovalRequest(outcome string) {
	m.ApprovalRequestsTotal.WithLabelValues(outcome).Inc()
}

func (m *SettlementMetrics) RecordWebhookEvent(eventType, outcome string) {
	m.WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func (m *SettlementMetrics) RecordWebhookDispatchFailure(eventType string) {
	m.WebhookDispatchFailuresTotal.WithLabelValues(eventType).Inc()
}

func (m *SettlementMetrics) RecordWebhookRejected(reason string) {
	m.WebhookRejectedTotal.WithLabelValues(reason).Inc()
}

func (m *SettlementMetrics) RecordPaymentIntentCreated(currency string, amountMinor int64) {
	m.PaymentIntentsCreatedTotal.WithLabelValues(currency).Inc()
	m.PaymentIntentAmountMinor.WithLabelValues(currency).Observe(float64(amountMinor))
}

func (m *SettlementMetrics) RecordGatewayError(operation string) {
	m.GatewayErrorsTotal.WithLabelValues(operation).Inc()
}
