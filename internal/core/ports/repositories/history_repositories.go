package repositories

import (
	"context"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// HistoryReader defines read operations for transaction history.
type HistoryReader interface {
	ListHistoryByTransaction(ctx context.Context, transactionID string) ([]domain.TransactionHistory, error)

	// ListHistoryByFiscalYear returns history rows of the year's transactions, newest first.
	ListHistoryByFiscalYear(ctx context.Context, fiscalYearID string, limit int) ([]domain.TransactionHistory, error)

	CountHistory(ctx context.Context) (int64, error)
}

// HistoryTransactionSupport appends history rows. There is no update or delete outside the year cascade.
type HistoryTransactionSupport interface {
	SaveHistoryInTx(ctx context.Context, tx pgx.Tx, history domain.TransactionHistory) error
}

// HistoryRepositoryFacade combines all history repository interfaces.
type HistoryRepositoryFacade interface {
	HistoryReader
	HistoryTransactionSupport
}

// SystemHistoryRepositoryFacade stores the club-wide audit log.
type SystemHistoryRepositoryFacade interface {
	SaveSystemHistoryInTx(ctx context.Context, tx pgx.Tx, entry domain.SystemHistory) error
	ListSystemHistory(ctx context.Context, limit int) ([]domain.SystemHistory, error)
}
