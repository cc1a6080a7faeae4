package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fortune/ledger-service/domain/entities"
)

// CreateTestAccount creates an account with a default invested balance
func CreateTestAccount(userID uuid.UUID) *entities.Account {
	account := entities.NewAccount(userID, time.Now().UTC())
	account.InvestBalance = decimal.NewFromInt(1000)
	return account
}

// CreateTestAccountWithBalance creates an account with a specific invested balance
func CreateTestAccountWithBalance(userID uuid.UUID, invested decimal.Decimal) *entities.Account {
	account := CreateTestAccount(userID)
	account.InvestBalance = invested
	return account
}

// CreateTestDeposit creates a pending USDT deposit
func CreateTestDeposit(userID uuid.UUID, amount decimal.Decimal) *entities.Transaction {
	return &entities.Transaction{
		UserID:   userID,
		Kind:     entities.TransactionKindDeposit,
		Amount:   amount,
		Currency: entities.CurrencyUSDT,
		Status:   entities.TransactionStatusPending,
	}
}

// CreateTestWithdrawal creates a pending BTC withdrawal with a placeholder wallet
func CreateTestWithdrawal(userID uuid.UUID, amount decimal.Decimal) *entities.Transaction {
	return &entities.Transaction{
		UserID:        userID,
		Kind:          entities.TransactionKindWithdrawal,
		Amount:        amount,
		Currency:      entities.CurrencyBTC,
		WalletAddress: "bc1qtestwallet",
		Status:        entities.TransactionStatusPending,
	}
}

// CreateTestYieldEvent creates a yield event of the given subkind
func CreateTestYieldEvent(userID uuid.UUID, subkind entities.YieldSubkind, amount decimal.Decimal) *entities.YieldEvent {
	return &entities.YieldEvent{
		UserID:  userID,
		Subkind: subkind,
		Amount:  amount,
	}
}

// CreateTestYieldEventFromSource creates a commission event attributed to a source user
func CreateTestYieldEventFromSource(userID, sourceUserID uuid.UUID, amount decimal.Decimal) *entities.YieldEvent {
	event := CreateTestYieldEvent(userID, entities.YieldSubkindReferral, amount)
	event.SourceUserID = &sourceUserID
	return event
}
