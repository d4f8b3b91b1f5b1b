package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/f4y/internal/domain"
)

// errorBody is the single (code, message) pair surfaced for any failed
// request.
type errorBody struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, errorBody{Error: true, Code: code, Message: message})
}

// RespondDomainError maps engine errors onto HTTP statuses. Coded ledger
// errors keep their code; anything uncoded is an internal failure.
func RespondDomainError(w http.ResponseWriter, err error) {
	var coded *domain.Error
	if errors.As(err, &coded) {
		RespondError(w, statusForCode(coded.Code), coded.Code, coded.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrRateUnavailable):
		RespondError(w, http.StatusBadGateway, "internal", domain.ErrRateUnavailable.Error())
	case errors.Is(err, domain.ErrNotFound):
		RespondError(w, http.StatusNotFound, "not_found", "not found")
	default:
		slog.Error("unhandled domain error", "error", err)
		RespondError(w, http.StatusInternalServerError, "internal", "an unexpected error occurred")
	}
}

func statusForCode(code string) int {
	switch code {
	case "nf_acc":
		return http.StatusNotFound
	case "z_srcacc", "z_destacc", "no_same":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
