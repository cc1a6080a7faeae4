package server

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"fortune/ledger-service/domain/entities"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// writeDomainError maps the domain error taxonomy onto HTTP status codes.
// Unknown errors are logged and hidden behind a generic 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrInvalidAmount),
		errors.Is(err, entities.ErrBelowMinimum),
		errors.Is(err, entities.ErrSelfReferral):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrAccountNotFound),
		errors.Is(err, entities.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, entities.ErrInsufficientFunds),
		errors.Is(err, entities.ErrAlreadyProcessed),
		errors.Is(err, entities.ErrAccountClosed),
		errors.Is(err, entities.ErrPoolLocked):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, entities.ErrExternalUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		log.WithError(err).Error("Unhandled error in request")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
