package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/club_ledger/internal/models"
	"github.com/SscSPs/club_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fiscalYearColumns = `fiscal_year_id, name, start_date, end_date, starting_balance_cash, starting_balance_bank, is_current, created_at, created_by, last_updated_at, last_updated_by`

type PgxFiscalYearRepository struct {
	BaseRepository
}

func newPgxFiscalYearRepository(pool *pgxpool.Pool) portsrepo.FiscalYearRepositoryWithTx {
	return &PgxFiscalYearRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FiscalYearRepositoryWithTx = (*PgxFiscalYearRepository)(nil)

func scanFiscalYear(row pgx.Row) (models.FiscalYear, error) {
	var m models.FiscalYear
	err := row.Scan(
		&m.FiscalYearID,
		&m.Name,
		&m.StartDate,
		&m.EndDate,
		&m.StartingBalanceCash,
		&m.StartingBalanceBank,
		&m.IsCurrent,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func findFiscalYear(ctx context.Context, q querier, query string, args ...any) (*domain.FiscalYear, error) {
	m, err := scanFiscalYear(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapReadError(err, "fiscal year")
	}
	fy := mapping.ToDomainFiscalYear(m)
	return &fy, nil
}

func (r *PgxFiscalYearRepository) FindFiscalYearByID(ctx context.Context, fiscalYearID string) (*domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years WHERE fiscal_year_id = $1;`
	return findFiscalYear(ctx, r.Pool, query, fiscalYearID)
}

func (r *PgxFiscalYearRepository) FindCurrentFiscalYear(ctx context.Context) (*domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years WHERE is_current LIMIT 1;`
	return findFiscalYear(ctx, r.Pool, query)
}

func (r *PgxFiscalYearRepository) ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years ORDER BY start_date DESC, created_at DESC;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fiscal years: %w", err)
	}
	defer rows.Close()

	years := []models.FiscalYear{}
	for rows.Next() {
		m, err := scanFiscalYear(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fiscal year row: %w", err)
		}
		years = append(years, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fiscal year rows: %w", err)
	}
	return mapping.ToDomainFiscalYearSlice(years), nil
}

// UpdateFiscalYear writes name, dates and starting balances. The current flag is changed only by SetCurrentFiscalYearInTx.
func (r *PgxFiscalYearRepository) UpdateFiscalYear(ctx context.Context, fy domain.FiscalYear) error {
	return updateFiscalYear(ctx, r.Pool, fy)
}

func (r *PgxFiscalYearRepository) UpdateFiscalYearInTx(ctx context.Context, tx pgx.Tx, fy domain.FiscalYear) error {
	return updateFiscalYear(ctx, tx, fy)
}

func updateFiscalYear(ctx context.Context, q querier, fy domain.FiscalYear) error {
	m := mapping.ToModelFiscalYear(fy)
	query := `
		UPDATE fiscal_years
		SET name = $2, start_date = $3, end_date = $4, starting_balance_cash = $5, starting_balance_bank = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE fiscal_year_id = $1;
	`
	cmdTag, err := q.Exec(ctx, query,
		m.FiscalYearID,
		m.Name,
		m.StartDate,
		m.EndDate,
		m.StartingBalanceCash,
		m.StartingBalanceBank,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "fiscal year "+m.FiscalYearID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxFiscalYearRepository) SaveFiscalYearInTx(ctx context.Context, tx pgx.Tx, fy domain.FiscalYear) error {
	m := mapping.ToModelFiscalYear(fy)
	query := `
		INSERT INTO fiscal_years (` + fiscalYearColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		m.FiscalYearID,
		m.Name,
		m.StartDate,
		m.EndDate,
		m.StartingBalanceCash,
		m.StartingBalanceBank,
		m.IsCurrent,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "fiscal year "+m.Name)
	}
	return nil
}

func (r *PgxFiscalYearRepository) FindFiscalYearByIDForUpdate(ctx context.Context, tx pgx.Tx, fiscalYearID string) (*domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years WHERE fiscal_year_id = $1 FOR UPDATE;`
	return findFiscalYear(ctx, tx, query, fiscalYearID)
}

func (r *PgxFiscalYearRepository) HasCurrentFiscalYearInTx(ctx context.Context, tx pgx.Tx) (bool, error) {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM fiscal_years WHERE is_current);`).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check current fiscal year: %w", err)
	}
	return exists, nil
}

// SetCurrentFiscalYearInTx clears every flag before setting the target, so the partial unique index never sees two.
func (r *PgxFiscalYearRepository) SetCurrentFiscalYearInTx(ctx context.Context, tx pgx.Tx, fiscalYearID string, userID string, now time.Time) error {
	clearQuery := `
		UPDATE fiscal_years
		SET is_current = FALSE, last_updated_at = $1, last_updated_by = $2
		WHERE is_current AND fiscal_year_id <> $3;
	`
	if _, err := tx.Exec(ctx, clearQuery, now, userID, fiscalYearID); err != nil {
		return fmt.Errorf("failed to clear current fiscal year: %w", err)
	}

	setQuery := `
		UPDATE fiscal_years
		SET is_current = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE fiscal_year_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, setQuery, fiscalYearID, now, userID)
	if err != nil {
		return mapWriteError(err, "current fiscal year")
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteFiscalYearCascadeInTx deletes history, transactions, categories and the year row, in that order.
// The caller deletes the returned receipt blobs after commit.
func (r *PgxFiscalYearRepository) DeleteFiscalYearCascadeInTx(ctx context.Context, tx pgx.Tx, fiscalYearID string) (*domain.DeletionResult, []string, error) {
	fy, err := r.FindFiscalYearByIDForUpdate(ctx, tx, fiscalYearID)
	if err != nil {
		return nil, nil, err
	}

	receiptQuery := `
		SELECT DISTINCT receipt_image_url
		FROM transactions
		WHERE fiscal_year_id = $1 AND receipt_image_url IS NOT NULL;
	`
	rows, err := tx.Query(ctx, receiptQuery, fiscalYearID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to collect receipts of fiscal year %s: %w", fiscalYearID, err)
	}
	receiptURLs := []string{}
	for rows.Next() {
		var url sql.NullString
		if err := rows.Scan(&url); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("failed to scan receipt url: %w", err)
		}
		if url.Valid && url.String != "" {
			receiptURLs = append(receiptURLs, url.String)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating receipt urls: %w", err)
	}

	result := &domain.DeletionResult{
		FiscalYearID:   fy.FiscalYearID,
		FiscalYearName: fy.Name,
		WasCurrent:     fy.IsCurrent,
	}

	steps := []struct {
		what  string
		query string
		count *int64
	}{
		{
			what:  "transaction history",
			query: `DELETE FROM transaction_history WHERE transaction_id IN (SELECT transaction_id FROM transactions WHERE fiscal_year_id = $1);`,
			count: &result.HistoryCount,
		},
		{
			what:  "transactions",
			query: `DELETE FROM transactions WHERE fiscal_year_id = $1;`,
			count: &result.TransactionCount,
		},
		{
			what:  "categories",
			query: `DELETE FROM categories WHERE fiscal_year_id = $1;`,
			count: &result.CategoryCount,
		},
	}
	for _, step := range steps {
		cmdTag, err := tx.Exec(ctx, step.query, fiscalYearID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to delete %s of fiscal year %s: %w", step.what, fiscalYearID, err)
		}
		*step.count = cmdTag.RowsAffected()
	}

	if _, err := tx.Exec(ctx, `DELETE FROM fiscal_years WHERE fiscal_year_id = $1;`, fiscalYearID); err != nil {
		return nil, nil, fmt.Errorf("failed to delete fiscal year %s: %w", fiscalYearID, err)
	}

	return result, receiptURLs, nil
}

// PromoteLatestFiscalYearInTx returns nil when no fiscal year remains.
func (r *PgxFiscalYearRepository) PromoteLatestFiscalYearInTx(ctx context.Context, tx pgx.Tx, userID string, now time.Time) (*string, error) {
	var fiscalYearID string
	err := tx.QueryRow(ctx, `SELECT fiscal_year_id FROM fiscal_years ORDER BY start_date DESC, created_at DESC LIMIT 1 FOR UPDATE;`).Scan(&fiscalYearID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest fiscal year: %w", err)
	}

	if err := r.SetCurrentFiscalYearInTx(ctx, tx, fiscalYearID, userID, now); err != nil {
		return nil, err
	}
	return &fiscalYearID, nil
}
