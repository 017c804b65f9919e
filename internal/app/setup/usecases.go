package setup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/gateway"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/metrics"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/nonce"
	"github.com/LavaJover/pickup-settlement-service/internal/usecase/order"
	"github.com/LavaJover/pickup-settlement-service/internal/usecase/payment"
	"github.com/LavaJover/pickup-settlement-service/internal/usecase/secret"
	"github.com/LavaJover/pickup-settlement-service/internal/usecase/webhook"
)

type Usecases struct {
	Orders   *order.DefaultOrderUsecase
	Payments *payment.DefaultPaymentUsecase
	Webhooks *webhook.DefaultWebhookUsecase
	Nonces   *nonce.Manager
}

func InitializeUsecases(ctx context.Context, deps *Dependencies, m *metrics.SettlementMetrics, log *slog.Logger) (*Usecases, error) {
	cfg := deps.Config

	// A failed resolution leaves the keyring nil: approvals are then
	// refused instead of being checked against a guessed secret.
	keyring, err := secret.NewStore(cfg.Approval, deps.Repositories.SettingsRepo, log).Resolve(ctx)
	if err != nil {
		log.Error("approval signing secret unavailable; approval links are disabled", "error", err.Error())
	}

	var paymentGateway domain.PaymentGateway
	if cfg.Stripe.SecretKey != "" {
		paymentGateway = gateway.NewStripeGateway(cfg.Stripe.SecretKey, nil)
	} else {
		log.Warn("stripe secret key not configured; payment intents are disabled")
	}
	if cfg.Stripe.WebhookSecret == "" {
		log.Warn("stripe webhook secret not configured; webhooks will be rejected")
	}

	orders := order.NewDefaultOrderUsecase(
		deps.Repositories.OrderRepo,
		keyring,
		cfg.Approval.BaseURL,
		deps.OrderPublisher,
		m,
		log,
	)

	payments, err := payment.NewDefaultPaymentUsecase(
		deps.Repositories.OrderRepo,
		paymentGateway,
		cfg.PaymentIntent.DefaultCurrency,
		cfg.PaymentIntent.Source,
		m,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("payment usecase: %w", err)
	}

	webhooks := webhook.NewDefaultWebhookUsecase(
		webhook.NewVerifier(gateway.StripeEvents{}, cfg.Stripe.WebhookSecret),
		webhook.NewDispatcher(orders, paymentGateway, log),
		deps.Deliveries,
		m,
		log,
	)

	nonces, err := nonce.NewManager(cfg.PaymentIntent.NonceSecret, cfg.PaymentIntent.NonceTTL)
	if err != nil {
		return nil, fmt.Errorf("nonce manager: %w", err)
	}

	return &Usecases{
		Orders:   orders,
		Payments: payments,
		Webhooks: webhooks,
		Nonces:   nonces,
	}, nil
}
