package services

import (
	"context"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/SscSPs/club_ledger/internal/dto"
)

// FiscalYearReaderSvc defines read operations for fiscal years.
type FiscalYearReaderSvc interface {
	GetFiscalYear(ctx context.Context, fiscalYearID string) (*domain.FiscalYear, error)

	// GetCurrentFiscalYear returns the year flagged current, falling back to the newest year.
	GetCurrentFiscalYear(ctx context.Context) (*domain.FiscalYear, error)

	ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error)

	// GetFiscalYearSummary derives balances and totals from the year's transactions.
	GetFiscalYearSummary(ctx context.Context, fiscalYearID string) (*domain.FiscalYearSummary, error)
}

// FiscalYearWriterSvc defines write operations for fiscal years.
type FiscalYearWriterSvc interface {
	CreateFiscalYear(ctx context.Context, req dto.CreateFiscalYearRequest, userID string) (*domain.FiscalYear, error)
	UpdateFiscalYear(ctx context.Context, fiscalYearID string, req dto.UpdateFiscalYearRequest, userID string) (*domain.FiscalYear, error)

	// SetCurrentFiscalYear moves the current flag to fiscalYearID atomically.
	SetCurrentFiscalYear(ctx context.Context, fiscalYearID string, userID string) (*domain.FiscalYear, error)

	// DeleteFiscalYearDirect is the legacy deletion path that bypasses the vote.
	DeleteFiscalYearDirect(ctx context.Context, fiscalYearID string, confirmName string, userID string) (*domain.DeletionResult, error)
}

// FiscalYearSvcFacade combines all fiscal-year service interfaces.
type FiscalYearSvcFacade interface {
	FiscalYearReaderSvc
	FiscalYearWriterSvc
}

// CategorySvcFacade manages per-year categories.
type CategorySvcFacade interface {
	ListCategories(ctx context.Context, fiscalYearID string, categoryType *domain.CategoryType) ([]domain.Category, error)
	CreateCategory(ctx context.Context, fiscalYearID string, req dto.CreateCategoryRequest, userID string) (*domain.Category, error)
	RenameCategory(ctx context.Context, fiscalYearID string, categoryID string, req dto.RenameCategoryRequest, userID string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, fiscalYearID string, categoryID string) error
}
