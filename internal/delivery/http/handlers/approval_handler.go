package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/usecase/order"
)

// Customer-facing texts for the approval page.
const (
	msgInvalidLink      = "Invalid approval link."
	msgOrderNotFound    = "Order not found."
	msgTamperedLink     = "Invalid or tampered approval link."
	msgCannotApprove    = "Order cannot be approved at this time."
	msgApprovalInternal = "Something went wrong. Please try again later."
)

type OrderApprover interface {
	ApproveOrder(ctx context.Context, orderID int64, token string) (*order.ApprovalResult, error)
}

type ApprovalHandler struct {
	orders              OrderApprover
	approvedURL         string
	alreadyCompletedURL string
	log                 *slog.Logger
}

func NewApprovalHandler(orders OrderApprover, approvedURL, alreadyCompletedURL string, log *slog.Logger) *ApprovalHandler {
	return &ApprovalHandler{
		orders:              orders,
		approvedURL:         approvedURL,
		alreadyCompletedURL: alreadyCompletedURL,
		log:                 log,
	}
}

// Approve handles GET /?approve_order=1&order_id=<id>&token=<hex>.
func (h *ApprovalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("approve_order") != "1" {
		http.NotFound(w, r)
		return
	}

	orderID, err := strconv.ParseInt(strings.TrimSpace(q.Get("order_id")), 10, 64)
	token := strings.TrimSpace(q.Get("token"))
	if err != nil || orderID <= 0 || token == "" {
		h.page(w, http.StatusBadRequest, msgInvalidLink)
		return
	}

	result, err := h.orders.ApproveOrder(r.Context(), orderID, token)
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindNotFound:
			h.page(w, http.StatusNotFound, msgOrderNotFound)
		case domain.KindAuthorization:
			h.page(w, http.StatusForbidden, msgTamperedLink)
		case domain.KindConflict:
			h.page(w, http.StatusConflict, msgCannotApprove)
		default:
			h.log.Error("approval failed", "order_id", orderID, "error", err.Error())
			h.page(w, http.StatusInternalServerError, msgApprovalInternal)
		}
		return
	}

	if result.AlreadyCompleted {
		http.Redirect(w, r, h.alreadyCompletedURL, http.StatusFound)
		return
	}
	http.Redirect(w, r, withOrderParam(h.approvedURL, orderID), http.StatusFound)
}

func (h *ApprovalHandler) page(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message + "\n"))
}

func withOrderParam(landing string, orderID int64) string {
	u, err := url.Parse(landing)
	if err != nil {
		return landing
	}
	q := u.Query()
	q.Set("order", strconv.FormatInt(orderID, 10))
	u.RawQuery = q.Encode()
	return u.String()
}
