package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/services"
)

// Accounts orchestrates account reads, preference updates, self-service
// balance moves, and referral registration.
type Accounts struct {
	uowFactory UnitOfWorkFactory
}

// NewAccounts creates a new accounts orchestrator
func NewAccounts(uowFactory UnitOfWorkFactory) *Accounts {
	return &Accounts{uowFactory: uowFactory}
}

// Snapshot assembles the dashboard read model for a user
func (a *Accounts) Snapshot(ctx context.Context, userID uuid.UUID) (*entities.AccountSnapshot, error) {
	var snapshot *entities.AccountSnapshot
	err := a.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewAccountService(uow.AccountRepository(), uow.TransactionRepository(), uow.YieldEventRepository(), uow.ReferralRepository(), uow.EventBus())
		var err error
		snapshot, err = svc.Snapshot(ctx, userID)
		return err
	})
	return snapshot, err
}

// SetFlags updates the auto-compound and auto-renew preferences
func (a *Accounts) SetFlags(ctx context.Context, userID uuid.UUID, flags entities.AccountFlags) (*entities.Account, error) {
	var account *entities.Account
	err := a.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewAccountService(uow.AccountRepository(), uow.TransactionRepository(), uow.YieldEventRepository(), uow.ReferralRepository(), uow.EventBus())
		var err error
		account, err = svc.SetFlags(ctx, userID, flags)
		return err
	})
	return account, err
}

// Reinvest moves amount from withdrawable yield into invested principal
func (a *Accounts) Reinvest(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	return a.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewAccountService(uow.AccountRepository(), uow.TransactionRepository(), uow.YieldEventRepository(), uow.ReferralRepository(), uow.EventBus())
		return svc.Reinvest(ctx, userID, amount)
	})
}

// PoolReinvest moves amount from the pool balance into invested principal
func (a *Accounts) PoolReinvest(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	return a.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewAccountService(uow.AccountRepository(), uow.TransactionRepository(), uow.YieldEventRepository(), uow.ReferralRepository(), uow.EventBus())
		return svc.PoolReinvest(ctx, userID, amount)
	})
}

// PoolWithdraw moves amount from the pool balance into withdrawable yield
func (a *Accounts) PoolWithdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	return a.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewAccountService(uow.AccountRepository(), uow.TransactionRepository(), uow.YieldEventRepository(), uow.ReferralRepository(), uow.EventBus())
		return svc.PoolWithdraw(ctx, userID, amount)
	})
}

// Register creates the zero-balance ledger account for a newly signed-up user
// and records the inviter when one was given, in one unit of work.
func (a *Accounts) Register(ctx context.Context, userID uuid.UUID, referrerUserID *uuid.UUID) (*entities.Account, error) {
	var account *entities.Account
	err := a.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewAccountService(uow.AccountRepository(), uow.TransactionRepository(), uow.YieldEventRepository(), uow.ReferralRepository(), uow.EventBus())
		var err error
		account, err = svc.Register(ctx, userID)
		if err != nil {
			return err
		}
		if referrerUserID == nil {
			return nil
		}
		refSvc := services.NewReferralService(uow.ReferralRepository(), uow.YieldEventRepository(), uow.EventBus())
		return refSvc.RegisterEdge(ctx, userID, *referrerUserID)
	})
	return account, err
}

// Adjust applies an admin balance correction to one bucket of an account
func (a *Accounts) Adjust(ctx context.Context, userID uuid.UUID, bucket entities.Bucket, amount decimal.Decimal) (*entities.Account, error) {
	var account *entities.Account
	err := a.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewAccountService(uow.AccountRepository(), uow.TransactionRepository(), uow.YieldEventRepository(), uow.ReferralRepository(), uow.EventBus())
		var err error
		account, err = svc.Adjust(ctx, userID, bucket, amount)
		return err
	})
	return account, err
}

// ReferralOverview bundles the referral tree view for one user.
type ReferralOverview struct {
	Counts   entities.ReferralCounts `json:"counts"`
	Earnings decimal.Decimal         `json:"earnings"`
	Inviter  *uuid.UUID              `json:"inviter,omitempty"`
	Children []uuid.UUID             `json:"children"`
}

// Referrals returns the referral tree view for a user
func (a *Accounts) Referrals(ctx context.Context, userID uuid.UUID) (*ReferralOverview, error) {
	var overview ReferralOverview
	err := a.inTx(ctx, func(uow UnitOfWork) error {
		svc := services.NewReferralService(uow.ReferralRepository(), uow.YieldEventRepository(), uow.EventBus())
		counts, err := svc.Counts(ctx, userID)
		if err != nil {
			return err
		}
		earnings, err := svc.Earnings(ctx, userID)
		if err != nil {
			return err
		}
		inviter, err := uow.ReferralRepository().GetParent(ctx, userID)
		if err != nil {
			return err
		}
		children, err := uow.ReferralRepository().ListDirectChildren(ctx, userID)
		if err != nil {
			return err
		}
		overview = ReferralOverview{Counts: counts, Earnings: earnings, Inviter: inviter, Children: children}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &overview, nil
}

func (a *Accounts) inTx(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := a.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}
