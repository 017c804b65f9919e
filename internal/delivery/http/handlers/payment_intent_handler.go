package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/LavaJover/pickup-settlement-service/internal/delivery/http/dto"
	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/nonce"
	"github.com/LavaJover/pickup-settlement-service/internal/usecase/payment"
)

const (
	nonceField    = "qp_nonce"
	maxFormMemory = 64 << 10
)

type NonceManager interface {
	Issue(action string) (string, time.Time, error)
	Verify(nonce, action string) error
}

type PaymentIntentHandler struct {
	payments payment.PaymentUsecase
	nonces   NonceManager
	log      *slog.Logger
}

func NewPaymentIntentHandler(payments payment.PaymentUsecase, nonces NonceManager, log *slog.Logger) *PaymentIntentHandler {
	return &PaymentIntentHandler{payments: payments, nonces: nonces, log: log}
}

// Nonce handles GET /payment-intents/nonce.
func (h *PaymentIntentHandler) Nonce(w http.ResponseWriter, r *http.Request) {
	token, exp, err := h.nonces.Issue(nonce.ActionCreatePaymentIntent)
	if err != nil {
		h.log.Error("failed to issue nonce", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, dto.NonceResponse{Nonce: token, ExpiresAt: exp})
}

// Create handles POST /payment-intents with form fields amount, currency,
// email and qp_nonce.
func (h *PaymentIntentHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormMemory)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	if err := h.nonces.Verify(r.PostForm.Get(nonceField), nonce.ActionCreatePaymentIntent); err != nil {
		h.log.Warn("payment intent nonce rejected", "error", err.Error())
		writeError(w, http.StatusForbidden, domain.ErrInvalidNonce.Error())
		return
	}

	out, err := h.payments.CreatePaymentIntent(r.Context(), payment.CreateIntentInput{
		Amount:   r.PostForm.Get("amount"),
		Currency: r.PostForm.Get("currency"),
		Email:    r.PostForm.Get("email"),
	})
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("failed to create payment intent", "error", err.Error())
		}
		writeError(w, status, publicMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentIntentResponse{
		Success:         true,
		ClientSecret:    out.ClientSecret,
		OrderID:         out.OrderID,
		PaymentIntentID: out.PaymentIntentID,
	})
}
