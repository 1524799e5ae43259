package repositories

import (
	"context"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// TransactionReader defines read operations for ledger transactions.
type TransactionReader interface {
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns one page matching filter, newest ledger date first.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)

	// ListFiscalYearTransactions returns every transaction of the year, deleted ones included.
	ListFiscalYearTransactions(ctx context.Context, fiscalYearID string) ([]domain.Transaction, error)

	// CountTransactions counts every stored transaction.
	CountTransactions(ctx context.Context) (int64, error)

	// CountTransactionsRecordedBy counts the transactions a member recorded.
	CountTransactionsRecordedBy(ctx context.Context, userID string) (int64, error)
}

// TransactionTransactionSupport holds the lifecycle writes, which always run in a caller's transaction.
type TransactionTransactionSupport interface {
	FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error)

	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// UpdateTransactionInTx overwrites every mutable column, the soft-delete flags included.
	UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// ListFiscalYearTransactionsInTx is ListFiscalYearTransactions inside tx.
	ListFiscalYearTransactionsInTx(ctx context.Context, tx pgx.Tx, fiscalYearID string) ([]domain.Transaction, error)
}

// TransactionRepositoryFacade combines all ledger transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionTransactionSupport
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities.
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
