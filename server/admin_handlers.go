package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fortune/ledger-service/domain/entities"
)

func parseUUIDParam(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}

// handleAdminListPending returns the approval queue, oldest first
func (s *Server) handleAdminListPending(w http.ResponseWriter, r *http.Request) {
	txns, err := s.ledger.ListPending(r.Context(), listLimit(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

// handleAdminApprove approves a pending transaction
func (s *Server) handleAdminApprove(w http.ResponseWriter, r *http.Request) {
	txnID, err := parseUUIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	txn, err := s.ledger.Approve(r.Context(), txnID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

// handleAdminReject rejects a pending transaction
func (s *Server) handleAdminReject(w http.ResponseWriter, r *http.Request) {
	txnID, err := parseUUIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	txn, err := s.ledger.Reject(r.Context(), txnID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

// handleAdminUndo reverses a prior approval
func (s *Server) handleAdminUndo(w http.ResponseWriter, r *http.Request) {
	txnID, err := parseUUIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	txn, err := s.ledger.Undo(r.Context(), txnID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

type adjustRequest struct {
	Bucket string `json:"bucket" validate:"required,oneof=invest_balance withdrawable_yield pool_balance"`
	Amount string `json:"amount" validate:"required"`
}

// handleAdminAdjust applies a manual correction to one balance bucket. A
// negative amount debits.
func (s *Server) handleAdminAdjust(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req adjustRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	account, err := s.accounts.Adjust(r.Context(), userID, entities.Bucket(req.Bucket), amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

type jobRequest struct {
	Day string `json:"day,omitempty"`
}

func jobDay(r *http.Request) (time.Time, error) {
	var req jobRequest
	// Body is optional; an empty body means "today"
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Day == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", req.Day)
}

// handleAdminAccrue triggers the daily accrual run, optionally for a given day
func (s *Server) handleAdminAccrue(w http.ResponseWriter, r *http.Request) {
	day, err := jobDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid day, expected YYYY-MM-DD")
		return
	}

	report, err := s.accrualWorker.RunForDay(r.Context(), day)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleAdminTick triggers the cycle tick run, optionally for a given day
func (s *Server) handleAdminTick(w http.ResponseWriter, r *http.Request) {
	day, err := jobDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid day, expected YYYY-MM-DD")
		return
	}

	report, err := s.cycleWorker.RunForDay(r.Context(), day)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
