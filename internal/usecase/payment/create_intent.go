package payment

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/metrics"
	"github.com/jaevor/go-nanoid"
)

const (
	noteOrderCreated      = "Order created via quick pickup endpoint"
	noteIntentCreatedTmpl = "PaymentIntent created via Quick Pickup: %s"
	noteIntentFailedTmpl  = "PaymentIntent creation failed: %v"
	orderKeyPrefix        = "wc_order_"
	orderKeyLength        = 13
)

type CreateIntentInput struct {
	Amount   string
	Currency string
	Email    string
}

type CreateIntentOutput struct {
	ClientSecret    string `json:"client_secret"`
	OrderID         int64  `json:"order_id"`
	PaymentIntentID string `json:"payment_intent_id"`
}

type PaymentUsecase interface {
	CreatePaymentIntent(ctx context.Context, input CreateIntentInput) (*CreateIntentOutput, error)
}

type DefaultPaymentUsecase struct {
	OrderRepo domain.OrderRepository
	// Gateway is nil when no gateway secret key is configured.
	Gateway         domain.PaymentGateway
	DefaultCurrency string
	Source          string
	Metrics         *metrics.SettlementMetrics
	Log             *slog.Logger

	newOrderKey func() string
}

func NewDefaultPaymentUsecase(
	orderRepo domain.OrderRepository,
	gateway domain.PaymentGateway,
	defaultCurrency, source string,
	settlementMetrics *metrics.SettlementMetrics,
	log *slog.Logger,
) (*DefaultPaymentUsecase, error) {
	idGenerator, err := nanoid.Standard(orderKeyLength)
	if err != nil {
		return nil, fmt.Errorf("init order key generator: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &DefaultPaymentUsecase{
		OrderRepo:       orderRepo,
		Gateway:         gateway,
		DefaultCurrency: defaultCurrency,
		Source:          source,
		Metrics:         settlementMetrics,
		Log:             log,
		newOrderKey: func() string {
			return orderKeyPrefix + idGenerator()
		},
	}, nil
}

// CreatePaymentIntent creates a pending order and a gateway payment intent
// for it. The intent carries the order id in its metadata so webhooks can
// be matched back to the order.
func (uc *DefaultPaymentUsecase) CreatePaymentIntent(ctx context.Context, input CreateIntentInput) (*CreateIntentOutput, error) {
	amount, err := ParseAmount(input.Amount)
	if err != nil {
		return nil, domain.ValidationError(err)
	}

	rawCurrency := input.Currency
	if rawCurrency == "" {
		rawCurrency = uc.DefaultCurrency
	}
	code, err := NormalizeCurrency(rawCurrency)
	if err != nil {
		return nil, domain.ValidationError(err)
	}

	email := input.Email
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil {
			return nil, domain.ValidationError(fmt.Errorf("invalid email: %w", err))
		}
		email = addr.Address
	}

	// Reject amounts that round to nothing before an order is written.
	if _, err := MinorUnits(amount, code); err != nil {
		return nil, domain.ValidationError(err)
	}

	if uc.Gateway == nil {
		return nil, domain.ConfigurationError(domain.ErrGatewayKeyUnset)
	}

	order := &domain.Order{
		OrderKey:     uc.newOrderKey(),
		Status:       domain.StatusPending,
		BillingEmail: email,
		Currency:     code,
		Total:        amount.Round(int32(Scale(code))),
	}
	orderID, err := uc.OrderRepo.CreateOrder(ctx, order, noteOrderCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	req, err := Build(amount, code, orderID, email, uc.Source)
	if err != nil {
		return nil, domain.ValidationError(err)
	}

	intent, err := uc.Gateway.CreatePaymentIntent(ctx, req)
	if err != nil {
		uc.recordGatewayError("create_payment_intent")
		uc.Log.Error("failed to create payment intent", "order_id", orderID, "error", err.Error())
		if noteErr := uc.OrderRepo.AddNote(ctx, orderID, fmt.Sprintf(noteIntentFailedTmpl, err)); noteErr != nil {
			uc.Log.Error("failed to record order note", "order_id", orderID, "error", noteErr.Error())
		}
		return nil, domain.UpstreamError(err)
	}

	if err := uc.OrderRepo.SetPaymentIntent(ctx, orderID, intent.ID); err != nil {
		return nil, fmt.Errorf("failed to store payment intent id: %w", err)
	}
	if err := uc.OrderRepo.AddNote(ctx, orderID, fmt.Sprintf(noteIntentCreatedTmpl, intent.ID)); err != nil {
		uc.Log.Error("failed to record order note", "order_id", orderID, "error", err.Error())
	}

	uc.recordIntentCreated(code, req.AmountMinor)
	uc.Log.Info("payment intent created",
		"order_id", orderID,
		"payment_intent_id", intent.ID,
		"currency", code,
		"amount_minor", req.AmountMinor,
	)

	return &CreateIntentOutput{
		ClientSecret:    intent.ClientSecret,
		OrderID:         orderID,
		PaymentIntentID: intent.ID,
	}, nil
}

func (uc *DefaultPaymentUsecase) recordIntentCreated(code string, amountMinor int64) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordPaymentIntentCreated(code, amountMinor)
}

func (uc *DefaultPaymentUsecase) recordGatewayError(operation string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordGatewayError(operation)
}
