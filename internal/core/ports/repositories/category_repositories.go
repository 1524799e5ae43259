package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// CategoryReader defines read operations for categories.
type CategoryReader interface {
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)

	// ListCategories returns a year's categories ordered by type and sort order.
	ListCategories(ctx context.Context, fiscalYearID string, categoryType *domain.CategoryType) ([]domain.Category, error)
}

// CategoryWriter defines write operations for categories.
type CategoryWriter interface {
	// SaveCategory inserts the category at the end of its type's sort order and returns the stored row.
	SaveCategory(ctx context.Context, category domain.Category) (*domain.Category, error)

	RenameCategory(ctx context.Context, categoryID string, name string, userID string, now time.Time) error

	DeleteCategory(ctx context.Context, categoryID string) error
}

// CategoryTransactionSupport seeds categories as part of fiscal year creation.
type CategoryTransactionSupport interface {
	SaveCategoriesInTx(ctx context.Context, tx pgx.Tx, categories []domain.Category) error

	// CopyCategoriesInTx duplicates every category of fromYear into toYear, keeping sort order.
	CopyCategoriesInTx(ctx context.Context, tx pgx.Tx, fromYearID, toYearID string, userID string, now time.Time) (int64, error)
}

// CategoryRepositoryFacade combines all category repository interfaces.
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
	CategoryTransactionSupport
}
