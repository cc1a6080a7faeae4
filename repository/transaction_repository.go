package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fortune/ledger-service/database"
	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/interfaces"
)

const transactionColumns = `
	id, user_id, kind, amount, currency, wallet_address, status, created_at, updated_at`

// TransactionRepository implements the TransactionRepository interface
type TransactionRepository struct {
	q Queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

func newTransactionRepository(tx Queryable) interfaces.TransactionRepository {
	return &TransactionRepository{q: tx}
}

func scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	var t entities.Transaction
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Kind,
		&t.Amount,
		&t.Currency,
		&t.WalletAddress,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, entities.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return &t, nil
}

// Create inserts a new pending journal entry
func (r *TransactionRepository) Create(ctx context.Context, txn *entities.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, kind, amount, currency, wallet_address, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.q.QueryRow(ctx, query,
		txn.UserID,
		txn.Kind,
		txn.Amount,
		txn.Currency,
		txn.WalletAddress,
		txn.Status,
	).Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create %s for user %s: %w", txn.Kind, txn.UserID, err)
	}
	return nil
}

// GetByID retrieves a journal entry by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	query := `SELECT` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.q.QueryRow(ctx, query, id))
}

// UpdateStatus transitions the entry from expected to next. The WHERE clause
// on the current status makes the transition a compare-and-set: a concurrent
// admin who lost the race affects zero rows and gets ErrAlreadyProcessed.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next entities.TransactionStatus) error {
	query := `UPDATE transactions SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	tag, err := r.q.Exec(ctx, query, id, expected, next)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrAlreadyProcessed
	}
	return nil
}

// ListByUser returns a user's journal entries, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Transaction, error) {
	query := `SELECT` + transactionColumns + `
		FROM transactions WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %s: %w", userID, err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListByStatus returns journal entries in the given status, oldest first so
// the admin queue is worked in arrival order
func (r *TransactionRepository) ListByStatus(ctx context.Context, status entities.TransactionStatus, limit int) ([]*entities.Transaction, error) {
	query := `SELECT` + transactionColumns + `
		FROM transactions WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s transactions: %w", status, err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// CountPendingByUser returns pending entry counts per kind for a user
func (r *TransactionRepository) CountPendingByUser(ctx context.Context, userID uuid.UUID) (int, int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE kind = 'deposit'),
			COUNT(*) FILTER (WHERE kind = 'withdrawal')
		FROM transactions
		WHERE user_id = $1 AND status = 'pending'`

	var deposits, withdrawals int
	if err := r.q.QueryRow(ctx, query, userID).Scan(&deposits, &withdrawals); err != nil {
		return 0, 0, fmt.Errorf("failed to count pending transactions for user %s: %w", userID, err)
	}
	return deposits, withdrawals, nil
}

func collectTransactions(rows pgx.Rows) ([]*entities.Transaction, error) {
	var txns []*entities.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}
