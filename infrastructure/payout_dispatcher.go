package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"fortune/ledger-service/domain/entities"
)

// WebhookPayoutDispatcher notifies the external payment processor of approved
// outbound payments over a signed-by-deployment webhook. It is always called
// after the ledger transaction has committed; failures here are logged for
// out-of-band retry and never unwind ledger state.
type WebhookPayoutDispatcher struct {
	webhookURL string
	httpClient *http.Client
}

// NewWebhookPayoutDispatcher creates a new webhook payout dispatcher.
// An empty URL disables dispatching, which is the development default.
func NewWebhookPayoutDispatcher(webhookURL string) *WebhookPayoutDispatcher {
	return &WebhookPayoutDispatcher{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type payoutRequest struct {
	Kind          string          `json:"kind"`
	TransactionID string          `json:"transaction_id,omitempty"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	WalletAddress string          `json:"wallet_address,omitempty"`
}

// DispatchWithdrawal queues the on-chain payment for an approved withdrawal
func (d *WebhookPayoutDispatcher) DispatchWithdrawal(ctx context.Context, txn *entities.Transaction) error {
	return d.post(ctx, payoutRequest{
		Kind:          "withdrawal",
		TransactionID: txn.ID.String(),
		UserID:        txn.UserID,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		WalletAddress: txn.WalletAddress,
	})
}

// DispatchClosure queues the principal payout for a closed account
func (d *WebhookPayoutDispatcher) DispatchClosure(ctx context.Context, userID uuid.UUID, principal decimal.Decimal) error {
	return d.post(ctx, payoutRequest{
		Kind:   "closure",
		UserID: userID,
		Amount: principal,
	})
}

func (d *WebhookPayoutDispatcher) post(ctx context.Context, payout payoutRequest) error {
	if d.webhookURL == "" {
		log.WithFields(log.Fields{
			"kind":   payout.Kind,
			"userId": payout.UserID,
			"amount": payout.Amount,
		}).Info("Payout webhook not configured, skipping dispatch")
		return nil
	}

	body, err := json.Marshal(payout)
	if err != nil {
		return fmt.Errorf("failed to marshal payout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build payout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payout dispatch failed: %w", entities.ErrExternalUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("payout endpoint returned %d: %w", resp.StatusCode, entities.ErrExternalUnavailable)
	}

	log.WithFields(log.Fields{
		"kind":   payout.Kind,
		"userId": payout.UserID,
		"amount": payout.Amount,
	}).Info("Dispatched payout")
	return nil
}
