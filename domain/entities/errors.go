package entities

import "errors"

// Ledger error taxonomy. Validation errors are returned before any mutation;
// ErrInsufficientFunds and ErrAlreadyProcessed surface from inside the
// transaction boundary and abort it entirely.
var (
	// ErrInvalidAmount indicates a zero, negative, or unparsable amount
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrBelowMinimum indicates a deposit below the configured policy floor
	ErrBelowMinimum = errors.New("deposit below minimum")

	// ErrInsufficientFunds indicates a debit that would drive a balance bucket below zero
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAlreadyProcessed indicates a transaction that is not in the expected pre-state
	ErrAlreadyProcessed = errors.New("transaction already processed")

	// ErrAccountNotFound indicates no ledger account exists for the user
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound indicates no journal entry exists with the given id
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrNotAuthorized indicates the caller lacks the required role
	ErrNotAuthorized = errors.New("not authorized")

	// ErrSelfReferral indicates a referral edge that would point at its own child
	ErrSelfReferral = errors.New("cannot refer yourself")

	// ErrAccountClosed indicates an operation against a closed account
	ErrAccountClosed = errors.New("account is closed")

	// ErrPoolLocked indicates a pool operation before the second cycle has begun
	ErrPoolLocked = errors.New("pool balance locked until second cycle")

	// ErrExternalUnavailable indicates a collaborator (oracle, payout, notification)
	// failure. It is never allowed to roll back a committed ledger mutation.
	ErrExternalUnavailable = errors.New("external service unavailable")
)
