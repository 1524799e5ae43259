package services

import (
	"context"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/SscSPs/club_ledger/internal/dto"
)

// TransactionReaderSvc defines read operations for ledger entries and their history.
type TransactionReaderSvc interface {
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*domain.TransactionPage, error)
	ListTransactionHistory(ctx context.Context, transactionID string) ([]domain.TransactionHistory, error)
	ListFiscalYearHistory(ctx context.Context, fiscalYearID string, limit int) ([]domain.TransactionHistory, error)
}

// TransactionLifecycleSvc changes ledger entries. Each call writes the row, one history row
// and the balance change in a single database transaction.
type TransactionLifecycleSvc interface {
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error)

	// DeleteTransaction soft-deletes after checking confirmName against the actor's display name.
	DeleteTransaction(ctx context.Context, transactionID string, confirmName string, userID string) (*domain.Transaction, error)
	RestoreTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error)
}

// TransactionSvcFacade combines the ledger entry service interfaces.
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionLifecycleSvc
}
