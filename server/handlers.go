package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fortune/ledger-service/domain/entities"
)

const defaultListLimit = 50

var validate = validator.New()

type depositRequest struct {
	Amount   string `json:"amount" validate:"required"`
	Currency string `json:"currency" validate:"required,oneof=BTC ETH USDT"`
}

type withdrawalRequest struct {
	Amount        string `json:"amount" validate:"required"`
	Currency      string `json:"currency" validate:"required,oneof=BTC ETH USDT"`
	WalletAddress string `json:"wallet_address" validate:"required"`
}

type amountRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type registerRequest struct {
	ReferrerUserID string `json:"referrer_user_id,omitempty" validate:"omitempty,uuid4"`
}

func decodeAndValidate(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, entities.ErrInvalidAmount
	}
	return amount, nil
}

func listLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit <= 500 {
			return limit
		}
	}
	return defaultListLimit
}

// handleRegister creates the caller's zero-balance account and records the
// referral edge when an inviter was given. The identity provider calls this
// once after signup; calling it again returns the existing account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req registerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var referrer *uuid.UUID
	if req.ReferrerUserID != "" {
		parsed, err := parseUUIDParam(req.ReferrerUserID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid referrer id")
			return
		}
		referrer = &parsed
	}

	account, err := s.accounts.Register(r.Context(), id.UserID, referrer)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// handleSnapshot serves the dashboard read model
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	snapshot, err := s.accounts.Snapshot(r.Context(), id.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// handleSetFlags updates the auto-compound and auto-renew preferences
func (s *Server) handleSetFlags(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var flags entities.AccountFlags
	if err := json.NewDecoder(r.Body).Decode(&flags); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.accounts.SetFlags(r.Context(), id.UserID, flags)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// handleDeposit records a pending deposit intent
func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req depositRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	txn, err := s.ledger.RequestDeposit(r.Context(), id.UserID, amount, req.Currency)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, depositResponse{
		Transaction: txn,
		CoinAmount:  s.indicativeCoinAmount(r.Context(), amount, req.Currency),
	})
}

type depositResponse struct {
	Transaction *entities.Transaction `json:"transaction"`
	CoinAmount  *decimal.Decimal      `json:"coin_amount,omitempty"`
}

// indicativeCoinAmount converts the USD amount at the current oracle rate for
// display. The ledger is USD denominated; an unavailable oracle only drops
// this field.
func (s *Server) indicativeCoinAmount(ctx context.Context, usd decimal.Decimal, currency string) *decimal.Decimal {
	rates, err := s.oracle.Rates(ctx)
	if err != nil {
		return nil
	}
	price, ok := rates[currency]
	if !ok || !price.IsPositive() {
		return nil
	}
	coin := usd.DivRound(price, 8)
	return &coin
}

// handleWithdrawal records a pending withdrawal intent
func (s *Server) handleWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req withdrawalRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	txn, err := s.ledger.RequestWithdrawal(r.Context(), id.UserID, amount, req.Currency, req.WalletAddress)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

// handleListTransactions returns the caller's journal entries, newest first
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	txns, err := s.ledger.ListTransactions(r.Context(), id.UserID, listLimit(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

// handleReinvest moves yield back into invested principal
func (s *Server) handleReinvest(w http.ResponseWriter, r *http.Request) {
	s.handleBucketMove(w, r, s.accounts.Reinvest)
}

// handlePoolReinvest moves pool funds into invested principal
func (s *Server) handlePoolReinvest(w http.ResponseWriter, r *http.Request) {
	s.handleBucketMove(w, r, s.accounts.PoolReinvest)
}

// handlePoolWithdraw moves pool funds into withdrawable yield
func (s *Server) handlePoolWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleBucketMove(w, r, s.accounts.PoolWithdraw)
}

func (s *Server) handleBucketMove(w http.ResponseWriter, r *http.Request, move moveFunc) {
	id, _ := identityFrom(r.Context())

	var req amountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := move(r.Context(), id.UserID, amount); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReferrals returns the caller's referral tree view
func (s *Server) handleReferrals(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	overview, err := s.accounts.Referrals(r.Context(), id.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// handleRates serves indicative crypto/USD conversion rates
func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	rates, err := s.oracle.Rates(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}
