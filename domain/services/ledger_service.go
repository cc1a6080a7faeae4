package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fortune/ledger-service/config"
	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/events"
	"fortune/ledger-service/domain/interfaces"
)

type ledgerService struct {
	accountRepo     interfaces.AccountRepository
	transactionRepo interfaces.TransactionRepository
	eventPublisher  interfaces.EventPublisher
	now             func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	accountRepo interfaces.AccountRepository,
	transactionRepo interfaces.TransactionRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.LedgerService {
	return &ledgerService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
		now:             time.Now,
	}
}

func (s *ledgerService) RequestDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, currency string) (*entities.Transaction, error) {
	if !amount.IsPositive() {
		return nil, entities.ErrInvalidAmount
	}
	if amount.LessThan(decimal.NewFromInt(config.Get().MinDepositUSD)) {
		return nil, entities.ErrBelowMinimum
	}
	if !entities.IsValidCurrency(currency) {
		return nil, fmt.Errorf("unsupported currency %q: %w", currency, entities.ErrInvalidAmount)
	}

	// An account is not required yet. The first approved deposit creates it.
	txn := &entities.Transaction{
		UserID:   userID,
		Kind:     entities.TransactionKindDeposit,
		Amount:   amount,
		Currency: currency,
		Status:   entities.TransactionStatusPending,
	}
	if err := s.transactionRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create deposit request: %w", err)
	}
	return txn, nil
}

func (s *ledgerService) RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, currency, walletAddress string) (*entities.Transaction, error) {
	if !amount.IsPositive() {
		return nil, entities.ErrInvalidAmount
	}
	if !entities.IsValidCurrency(currency) {
		return nil, fmt.Errorf("unsupported currency %q: %w", currency, entities.ErrInvalidAmount)
	}
	if walletAddress == "" {
		return nil, fmt.Errorf("wallet address required: %w", entities.ErrInvalidAmount)
	}

	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, entities.ErrAccountClosed
	}
	// Courtesy check only. The authoritative funds check happens under the
	// row lock at approval time.
	if account.WithdrawableYield.LessThan(amount) {
		return nil, entities.ErrInsufficientFunds
	}

	txn := &entities.Transaction{
		UserID:        userID,
		Kind:          entities.TransactionKindWithdrawal,
		Amount:        amount,
		Currency:      currency,
		WalletAddress: walletAddress,
		Status:        entities.TransactionStatusPending,
	}
	if err := s.transactionRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create withdrawal request: %w", err)
	}
	return txn, nil
}

// Approve transitions a pending entry to approved and applies the balance
// move. The status CAS runs first so a concurrent admin loses cleanly with
// ErrAlreadyProcessed before any lock is taken on the account row.
func (s *ledgerService) Approve(ctx context.Context, transactionID uuid.UUID) (*entities.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !txn.CanApprove() {
		return nil, entities.ErrAlreadyProcessed
	}
	if err := s.transactionRepo.UpdateStatus(ctx, txn.ID, entities.TransactionStatusPending, entities.TransactionStatusApproved); err != nil {
		return nil, err
	}
	txn.Status = entities.TransactionStatusApproved

	switch txn.Kind {
	case entities.TransactionKindDeposit:
		if err := s.applyDeposit(ctx, txn); err != nil {
			return nil, err
		}
	case entities.TransactionKindWithdrawal:
		if err := s.applyWithdrawal(ctx, txn); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown transaction kind %q", txn.Kind)
	}
	return txn, nil
}

func (s *ledgerService) applyDeposit(ctx context.Context, txn *entities.Transaction) error {
	account, err := s.accountRepo.GetByUserIDForUpdate(ctx, txn.UserID)
	if err == entities.ErrAccountNotFound {
		account = entities.NewAccount(txn.UserID, s.now().UTC())
		if err := s.accountRepo.Create(ctx, account); err != nil {
			return fmt.Errorf("failed to create account on first deposit: %w", err)
		}
	} else if err != nil {
		return err
	}
	if !account.IsActive() {
		return entities.ErrAccountClosed
	}

	if err := account.Credit(entities.BucketInvest, txn.Amount); err != nil {
		return err
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to credit deposit: %w", err)
	}

	return s.eventPublisher.Publish(events.DepositConfirmedEvent{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
	})
}

func (s *ledgerService) applyWithdrawal(ctx context.Context, txn *entities.Transaction) error {
	account, err := s.accountRepo.GetByUserIDForUpdate(ctx, txn.UserID)
	if err != nil {
		return err
	}
	if err := account.Credit(entities.BucketYield, txn.Amount.Neg()); err != nil {
		return err
	}
	now := s.now().UTC()
	account.LastWithdrawAt = &now
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to debit withdrawal: %w", err)
	}

	return s.eventPublisher.Publish(events.WithdrawalApprovedEvent{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		WalletAddress: txn.WalletAddress,
	})
}

func (s *ledgerService) Reject(ctx context.Context, transactionID uuid.UUID) (*entities.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !txn.CanReject() {
		return nil, entities.ErrAlreadyProcessed
	}
	if err := s.transactionRepo.UpdateStatus(ctx, txn.ID, entities.TransactionStatusPending, entities.TransactionStatusRejected); err != nil {
		return nil, err
	}
	txn.Status = entities.TransactionStatusRejected

	if txn.Kind == entities.TransactionKindWithdrawal {
		if err := s.eventPublisher.Publish(events.WithdrawalRejectedEvent{
			TransactionID: txn.ID,
			UserID:        txn.UserID,
			Amount:        txn.Amount,
		}); err != nil {
			return nil, err
		}
	}
	return txn, nil
}

// Undo reverses a prior approval: the balance move is compensated and the
// entry returns to pending. A deposit undo can fail with ErrInsufficientFunds
// when the credited principal was since consumed; the whole unit of work
// rolls back in that case.
func (s *ledgerService) Undo(ctx context.Context, transactionID uuid.UUID) (*entities.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !txn.CanUndo() {
		return nil, entities.ErrAlreadyProcessed
	}
	if err := s.transactionRepo.UpdateStatus(ctx, txn.ID, entities.TransactionStatusApproved, entities.TransactionStatusPending); err != nil {
		return nil, err
	}
	txn.Status = entities.TransactionStatusPending

	account, err := s.accountRepo.GetByUserIDForUpdate(ctx, txn.UserID)
	if err != nil {
		return nil, err
	}

	switch txn.Kind {
	case entities.TransactionKindDeposit:
		err = account.Credit(entities.BucketInvest, txn.Amount.Neg())
	case entities.TransactionKindWithdrawal:
		err = account.Credit(entities.BucketYield, txn.Amount)
	}
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to compensate balances: %w", err)
	}

	if err := s.eventPublisher.Publish(events.ApprovalUndoneEvent{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Kind:          string(txn.Kind),
		Amount:        txn.Amount,
	}); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Transaction, error) {
	return s.transactionRepo.ListByUser(ctx, userID, limit)
}

func (s *ledgerService) ListPending(ctx context.Context, limit int) ([]*entities.Transaction, error) {
	return s.transactionRepo.ListByStatus(ctx, entities.TransactionStatusPending, limit)
}
