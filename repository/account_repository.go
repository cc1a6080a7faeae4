package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"fortune/ledger-service/database"
	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/interfaces"
)

const accountColumns = `
	user_id, invest_balance, withdrawable_yield, pool_balance, total_earned,
	cycle_day, cycle_started_at, cycles_completed,
	auto_compound_own, auto_compound_ref, auto_cycle_renew, closed,
	last_accrual_on, last_pool_credit_on, last_withdraw_at,
	created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

func newAccountRepository(tx Queryable) interfaces.AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var a entities.Account
	err := row.Scan(
		&a.UserID,
		&a.InvestBalance,
		&a.WithdrawableYield,
		&a.PoolBalance,
		&a.TotalEarned,
		&a.CycleDay,
		&a.CycleStartedAt,
		&a.CyclesCompleted,
		&a.AutoCompoundOwn,
		&a.AutoCompoundRef,
		&a.AutoCycleRenew,
		&a.Closed,
		&a.LastAccrualOn,
		&a.LastPoolCreditOn,
		&a.LastWithdrawAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, entities.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &a, nil
}

// GetByUserID retrieves an account without locking it
func (r *AccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE user_id = $1`
	return scanAccount(r.q.QueryRow(ctx, query, userID))
}

// GetByUserIDForUpdate retrieves an account holding its row lock until the
// surrounding transaction ends
func (r *AccountRepository) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entities.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE user_id = $1 FOR UPDATE`
	return scanAccount(r.q.QueryRow(ctx, query, userID))
}

// Create inserts a new account row
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	query := `
		INSERT INTO accounts (
			user_id, invest_balance, withdrawable_yield, pool_balance, total_earned,
			cycle_day, cycle_started_at, cycles_completed,
			auto_compound_own, auto_compound_ref, auto_cycle_renew, closed
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.q.QueryRow(ctx, query,
		account.UserID,
		account.InvestBalance,
		account.WithdrawableYield,
		account.PoolBalance,
		account.TotalEarned,
		account.CycleDay,
		account.CycleStartedAt,
		account.CyclesCompleted,
		account.AutoCompoundOwn,
		account.AutoCompoundRef,
		account.AutoCycleRenew,
		account.Closed,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account for user %s: %w", account.UserID, err)
	}
	return nil
}

// Update persists every mutable field of the account
func (r *AccountRepository) Update(ctx context.Context, account *entities.Account) error {
	query := `
		UPDATE accounts SET
			invest_balance = $2,
			withdrawable_yield = $3,
			pool_balance = $4,
			total_earned = $5,
			cycle_day = $6,
			cycle_started_at = $7,
			cycles_completed = $8,
			auto_compound_own = $9,
			auto_compound_ref = $10,
			auto_cycle_renew = $11,
			closed = $12,
			last_accrual_on = $13,
			last_pool_credit_on = $14,
			last_withdraw_at = $15,
			updated_at = NOW()
		WHERE user_id = $1`

	tag, err := r.q.Exec(ctx, query,
		account.UserID,
		account.InvestBalance,
		account.WithdrawableYield,
		account.PoolBalance,
		account.TotalEarned,
		account.CycleDay,
		account.CycleStartedAt,
		account.CyclesCompleted,
		account.AutoCompoundOwn,
		account.AutoCompoundRef,
		account.AutoCycleRenew,
		account.Closed,
		account.LastAccrualOn,
		account.LastPoolCreditOn,
		account.LastWithdrawAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account for user %s: %w", account.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrAccountNotFound
	}
	return nil
}

// GetActiveUserIDs returns the owners of all open accounts
func (r *AccountRepository) GetActiveUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM accounts WHERE NOT closed ORDER BY created_at`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SumInvestBalance returns the total invested principal across open accounts
func (r *AccountRepository) SumInvestBalance(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(invest_balance), 0) FROM accounts WHERE NOT closed`

	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum invested balances: %w", err)
	}
	return total, nil
}
