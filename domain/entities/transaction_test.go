package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionTransitions(t *testing.T) {
	pending := &Transaction{Status: TransactionStatusPending}
	assert.True(t, pending.CanApprove())
	assert.True(t, pending.CanReject())
	assert.False(t, pending.CanUndo())

	approved := &Transaction{Status: TransactionStatusApproved}
	assert.False(t, approved.CanApprove())
	assert.False(t, approved.CanReject())
	assert.True(t, approved.CanUndo())

	// Rejected is terminal
	rejected := &Transaction{Status: TransactionStatusRejected}
	assert.False(t, rejected.CanApprove())
	assert.False(t, rejected.CanReject())
	assert.False(t, rejected.CanUndo())
}

func TestIsValidCurrency(t *testing.T) {
	assert.True(t, IsValidCurrency("BTC"))
	assert.True(t, IsValidCurrency("ETH"))
	assert.True(t, IsValidCurrency("USDT"))
	assert.False(t, IsValidCurrency("DOGE"))
	assert.False(t, IsValidCurrency("btc"))
}
