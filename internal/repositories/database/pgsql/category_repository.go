package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/club_ledger/internal/models"
	"github.com/SscSPs/club_ledger/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `category_id, fiscal_year_id, name, type, sort_order, created_at, created_by, last_updated_at, last_updated_by`

type PgxCategoryRepository struct {
	BaseRepository
}

func newPgxCategoryRepository(pool *pgxpool.Pool) portsrepo.CategoryRepositoryFacade {
	return &PgxCategoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

func scanCategory(row pgx.Row) (models.Category, error) {
	var m models.Category
	err := row.Scan(
		&m.CategoryID,
		&m.FiscalYearID,
		&m.Name,
		&m.Type,
		&m.SortOrder,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE category_id = $1;`
	m, err := scanCategory(r.Pool.QueryRow(ctx, query, categoryID))
	if err != nil {
		return nil, mapReadError(err, "category "+categoryID)
	}
	c := mapping.ToDomainCategory(m)
	return &c, nil
}

func (r *PgxCategoryRepository) ListCategories(ctx context.Context, fiscalYearID string, categoryType *domain.CategoryType) ([]domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE fiscal_year_id = $1 AND ($2::TEXT IS NULL OR type = $2)
		ORDER BY type DESC, sort_order, name;
	`
	var typeFilter *string
	if categoryType != nil {
		t := string(*categoryType)
		typeFilter = &t
	}

	rows, err := r.Pool.Query(ctx, query, fiscalYearID, typeFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories of fiscal year %s: %w", fiscalYearID, err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		m, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return mapping.ToDomainCategorySlice(categories), nil
}

// SaveCategory computes the next sort order of the category's type inside the INSERT itself.
func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	m := mapping.ToModelCategory(category)
	query := `
		INSERT INTO categories (` + categoryColumns + `)
		SELECT $1, $2, $3, $4, COALESCE(MAX(sort_order), 0) + 1, $5, $6, $7, $8
		FROM categories
		WHERE fiscal_year_id = $2 AND type = $4
		RETURNING ` + categoryColumns + `;
	`
	saved, err := scanCategory(r.Pool.QueryRow(ctx, query,
		m.CategoryID,
		m.FiscalYearID,
		m.Name,
		m.Type,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	))
	if err != nil {
		return nil, mapWriteError(err, "category "+m.Name)
	}
	c := mapping.ToDomainCategory(saved)
	return &c, nil
}

func (r *PgxCategoryRepository) RenameCategory(ctx context.Context, categoryID string, name string, userID string, now time.Time) error {
	query := `
		UPDATE categories
		SET name = $2, last_updated_at = $3, last_updated_by = $4
		WHERE category_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, categoryID, name, now, userID)
	if err != nil {
		return mapWriteError(err, "category "+name)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM categories WHERE category_id = $1;`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category %s: %w", categoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveCategoriesInTx inserts the categories with pgx.CopyFrom.
func (r *PgxCategoryRepository) SaveCategoriesInTx(ctx context.Context, tx pgx.Tx, categories []domain.Category) error {
	if len(categories) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(categories))
	for _, c := range categories {
		m := mapping.ToModelCategory(c)
		rows = append(rows, []any{
			m.CategoryID, m.FiscalYearID, m.Name, m.Type, m.SortOrder,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		})
	}

	columns := []string{"category_id", "fiscal_year_id", "name", "type", "sort_order", "created_at", "created_by", "last_updated_at", "last_updated_by"}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"categories"}, columns, pgx.CopyFromRows(rows)); err != nil {
		return mapWriteError(err, "categories")
	}
	return nil
}

func (r *PgxCategoryRepository) CopyCategoriesInTx(ctx context.Context, tx pgx.Tx, fromYearID, toYearID string, userID string, now time.Time) (int64, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE fiscal_year_id = $1 ORDER BY type DESC, sort_order;`
	rows, err := tx.Query(ctx, query, fromYearID)
	if err != nil {
		return 0, fmt.Errorf("failed to read categories of fiscal year %s: %w", fromYearID, err)
	}

	var copies []domain.Category
	for rows.Next() {
		m, err := scanCategory(rows)
		if err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan category row: %w", err)
		}
		c := mapping.ToDomainCategory(m)
		c.CategoryID = uuid.NewString()
		c.FiscalYearID = toYearID
		c.AuditFields = domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}
		copies = append(copies, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating category rows: %w", err)
	}

	if err := r.SaveCategoriesInTx(ctx, tx, copies); err != nil {
		return 0, err
	}
	return int64(len(copies)), nil
}
