package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/LavaJover/pickup-settlement-service/internal/delivery/http/dto"
	"github.com/LavaJover/pickup-settlement-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Success: false, Error: message})
}

// statusFor maps a domain error kind onto an HTTP status.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	}
	// Configuration and upstream gateway failures are both server errors.
	return http.StatusInternalServerError
}

// publicMessage returns err's text for client-facing kinds and a generic
// message otherwise, so internal details are not echoed back.
func publicMessage(err error) string {
	var de *domain.Error
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindAuthorization, domain.KindNotFound, domain.KindConflict:
		if errors.As(err, &de) {
			return de.Err.Error()
		}
		return err.Error()
	case domain.KindUpstream:
		return "payment provider error"
	case domain.KindConfiguration:
		return "service is not configured"
	}
	return "internal error"
}
