package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/LavaJover/pickup-settlement-service/internal/delivery/http/dto"
	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/usecase/webhook"
)

const (
	maxWebhookBody  = 1 << 20
	signatureHeader = "Stripe-Signature"
)

type WebhookHandler struct {
	webhooks webhook.WebhookUsecase
	log      *slog.Logger
}

func NewWebhookHandler(webhooks webhook.WebhookUsecase, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, log: log}
}

// Receive handles POST /webhook. Verified deliveries are always acknowledged
// with 200, including ones whose processing failed internally.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	_, err = h.webhooks.HandleDelivery(r.Context(), payload, r.Header.Get(signatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVerifierUnavailable):
			h.log.Error("webhook verification unavailable", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "webhook verification unavailable")
		case errors.Is(err, domain.ErrWebhookSecretUnset):
			writeError(w, http.StatusBadRequest, "webhook not configured")
		case errors.Is(err, domain.ErrInvalidPayload):
			writeError(w, http.StatusBadRequest, "invalid payload")
		default:
			writeError(w, http.StatusBadRequest, "invalid signature")
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.WebhookAck{Received: true})
}
