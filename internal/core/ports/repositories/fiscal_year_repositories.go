package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// FiscalYearReader defines read operations for fiscal years.
type FiscalYearReader interface {
	FindFiscalYearByID(ctx context.Context, fiscalYearID string) (*domain.FiscalYear, error)

	// FindCurrentFiscalYear returns the year flagged current, or ErrNotFound.
	FindCurrentFiscalYear(ctx context.Context) (*domain.FiscalYear, error)

	// ListFiscalYears returns every year, newest start date first.
	ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error)
}

// FiscalYearWriter defines write operations for fiscal years.
type FiscalYearWriter interface {
	UpdateFiscalYear(ctx context.Context, fy domain.FiscalYear) error
}

// FiscalYearTransactionSupport holds the operations that must share a caller's transaction.
type FiscalYearTransactionSupport interface {
	SaveFiscalYearInTx(ctx context.Context, tx pgx.Tx, fy domain.FiscalYear) error
	UpdateFiscalYearInTx(ctx context.Context, tx pgx.Tx, fy domain.FiscalYear) error

	// FindFiscalYearByIDForUpdate locks the fiscal year row.
	FindFiscalYearByIDForUpdate(ctx context.Context, tx pgx.Tx, fiscalYearID string) (*domain.FiscalYear, error)

	// HasCurrentFiscalYearInTx reports whether any year is flagged current.
	HasCurrentFiscalYearInTx(ctx context.Context, tx pgx.Tx) (bool, error)

	// SetCurrentFiscalYearInTx clears the flag on every year, then sets it on fiscalYearID.
	SetCurrentFiscalYearInTx(ctx context.Context, tx pgx.Tx, fiscalYearID string, userID string, now time.Time) error

	// DeleteFiscalYearCascadeInTx removes the year with its history, transactions and categories.
	// The result carries the receipt URLs that were referenced by the deleted transactions.
	DeleteFiscalYearCascadeInTx(ctx context.Context, tx pgx.Tx, fiscalYearID string) (*domain.DeletionResult, []string, error)

	// PromoteLatestFiscalYearInTx makes the year with the latest start date current, if any remain.
	PromoteLatestFiscalYearInTx(ctx context.Context, tx pgx.Tx, userID string, now time.Time) (*string, error)
}

// FiscalYearRepositoryFacade combines all fiscal-year repository interfaces.
type FiscalYearRepositoryFacade interface {
	FiscalYearReader
	FiscalYearWriter
	FiscalYearTransactionSupport
}

// FiscalYearRepositoryWithTx extends FiscalYearRepositoryFacade with transaction capabilities.
type FiscalYearRepositoryWithTx interface {
	FiscalYearRepositoryFacade
	TransactionManager
}
