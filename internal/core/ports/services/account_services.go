package services

import (
	"context"

	"github.com/SscSPs/club_ledger/internal/core/domain"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// ListAccounts returns both club accounts with their persisted balances.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountReconcilerSvc repairs persisted balances that drifted from the ledger.
type AccountReconcilerSvc interface {
	// ReconcileBalances rewrites each account's balance to the value derived from the current fiscal year.
	ReconcileBalances(ctx context.Context, userID string) (*domain.ReconcileResult, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountReconcilerSvc
}
