package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/club_ledger/internal/models"
	"github.com/SscSPs/club_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `transaction_id, type, amount, description, category, account_id, from_account_id, to_account_id,
	fiscal_year_id, recorded_by, recorded_at, receipt_image_url, is_deleted, deleted_at,
	created_at, created_by, last_updated_at, last_updated_by`

const defaultTransactionPageSize = 50

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.Type,
		&m.Amount,
		&m.Description,
		&m.Category,
		&m.AccountID,
		&m.FromAccountID,
		&m.ToAccountID,
		&m.FiscalYearID,
		&m.RecordedBy,
		&m.RecordedAt,
		&m.ReceiptImageURL,
		&m.IsDeleted,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	txns := []models.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return mapping.ToDomainTransactionSlice(txns), nil
}

func findTransaction(ctx context.Context, q querier, query, transactionID string) (*domain.Transaction, error) {
	m, err := scanTransaction(q.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, mapReadError(err, "transaction "+transactionID)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	return findTransaction(ctx, r.Pool, query, transactionID)
}

func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`
	return findTransaction(ctx, tx, query, transactionID)
}

// ListTransactions builds the WHERE clause from the non-nil filter fields.
// Paging is keyset on (recorded_at, created_at), both descending.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	conditions := []string{"fiscal_year_id = $1"}
	args := []any{filter.FiscalYearID}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.IncludeDeleted {
		conditions = append(conditions, "NOT is_deleted")
	}
	if filter.Type != nil {
		conditions = append(conditions, "type = "+next(string(*filter.Type)))
	}
	if filter.AccountID != nil {
		p := next(*filter.AccountID)
		conditions = append(conditions, fmt.Sprintf("(account_id = %[1]s OR from_account_id = %[1]s OR to_account_id = %[1]s)", p))
	}
	if filter.MonthStart != nil {
		conditions = append(conditions, "recorded_at >= "+next(*filter.MonthStart))
	}
	if filter.MonthEnd != nil {
		conditions = append(conditions, "recorded_at < "+next(*filter.MonthEnd))
	}
	if filter.AfterRecorded != nil && filter.AfterCreated != nil {
		conditions = append(conditions, fmt.Sprintf("(recorded_at, created_at) < (%s, %s)", next(*filter.AfterRecorded), next(*filter.AfterCreated)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultTransactionPageSize
	}

	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY recorded_at DESC, created_at DESC
		LIMIT ` + next(limit) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions of fiscal year %s: %w", filter.FiscalYearID, err)
	}
	return collectTransactions(rows)
}

const fiscalYearTransactionsQuery = `SELECT ` + transactionColumns + `
	FROM transactions
	WHERE fiscal_year_id = $1
	ORDER BY recorded_at, created_at;`

func (r *PgxTransactionRepository) ListFiscalYearTransactions(ctx context.Context, fiscalYearID string) ([]domain.Transaction, error) {
	rows, err := r.Pool.Query(ctx, fiscalYearTransactionsQuery, fiscalYearID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions of fiscal year %s: %w", fiscalYearID, err)
	}
	return collectTransactions(rows)
}

func (r *PgxTransactionRepository) ListFiscalYearTransactionsInTx(ctx context.Context, tx pgx.Tx, fiscalYearID string) ([]domain.Transaction, error) {
	rows, err := tx.Query(ctx, fiscalYearTransactionsQuery, fiscalYearID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions of fiscal year %s: %w", fiscalYearID, err)
	}
	return collectTransactions(rows)
}

func (r *PgxTransactionRepository) CountTransactions(ctx context.Context) (int64, error) {
	var n int64
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM transactions;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

func (r *PgxTransactionRepository) CountTransactionsRecordedBy(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE recorded_by = $1;`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions recorded by %s: %w", userID, err)
	}
	return n, nil
}

func (r *PgxTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.Type,
		m.Amount,
		m.Description,
		m.Category,
		m.AccountID,
		m.FromAccountID,
		m.ToAccountID,
		m.FiscalYearID,
		m.RecordedBy,
		m.RecordedAt,
		m.ReceiptImageURL,
		m.IsDeleted,
		m.DeletedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "transaction "+m.TransactionID)
	}
	return nil
}

func (r *PgxTransactionRepository) UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		UPDATE transactions
		SET type = $2, amount = $3, description = $4, category = $5, account_id = $6, from_account_id = $7,
		    to_account_id = $8, recorded_at = $9, receipt_image_url = $10, is_deleted = $11, deleted_at = $12,
		    last_updated_at = $13, last_updated_by = $14
		WHERE transaction_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.Type,
		m.Amount,
		m.Description,
		m.Category,
		m.AccountID,
		m.FromAccountID,
		m.ToAccountID,
		m.RecordedAt,
		m.ReceiptImageURL,
		m.IsDeleted,
		m.DeletedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "transaction "+m.TransactionID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
