package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/LavaJover/pickup-settlement-service/internal/delivery/http/dto"
	"github.com/LavaJover/pickup-settlement-service/internal/domain"
	"github.com/LavaJover/pickup-settlement-service/internal/usecase/order"
	"github.com/go-chi/chi/v5"
)

const adminTokenHeader = "X-Admin-Token"

type OrderAdmin interface {
	RequestApproval(ctx context.Context, orderID int64) (*order.ApprovalRequest, error)
	ListNotes(ctx context.Context, orderID int64) ([]domain.OrderNote, error)
}

type AdminHandler struct {
	orders OrderAdmin
	token  string
	log    *slog.Logger
}

func NewAdminHandler(orders OrderAdmin, token string, log *slog.Logger) *AdminHandler {
	return &AdminHandler{orders: orders, token: token, log: log}
}

// RequireToken rejects requests without the configured admin token. With no
// token configured every admin request is refused.
func (h *AdminHandler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(adminTokenHeader)
		if h.token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestApproval handles POST /admin/orders/{id}/request-approval.
func (h *AdminHandler) RequestApproval(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	req, err := h.orders.RequestApproval(r.Context(), orderID)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("approval request failed", "order_id", orderID, "error", err.Error())
		}
		writeError(w, status, publicMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, dto.ApprovalRequestResponse{
		Success: true,
		OrderID: req.OrderID,
		Email:   req.Email,
		Resent:  req.Resent,
	})
}

// Notes handles GET /admin/orders/{id}/notes.
func (h *AdminHandler) Notes(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	notes, err := h.orders.ListNotes(r.Context(), orderID)
	if err != nil {
		h.log.Error("failed to list notes", "order_id", orderID, "error", err.Error())
		writeError(w, statusFor(err), publicMessage(err))
		return
	}

	out := make([]dto.OrderNoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, dto.OrderNoteResponse{ID: n.ID, Text: n.Text, CreatedAt: n.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orderID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return 0, false
	}
	return orderID, true
}
