package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/club_ledger/internal/models"
	"github.com/SscSPs/club_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const historyColumns = `h.history_id, h.transaction_id, h.action, h.changed_by, h.changed_at, h.old_data, h.new_data`

const defaultHistoryLimit = 100

type PgxHistoryRepository struct {
	BaseRepository
}

func newPgxHistoryRepository(pool *pgxpool.Pool) portsrepo.HistoryRepositoryFacade {
	return &PgxHistoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.HistoryRepositoryFacade = (*PgxHistoryRepository)(nil)

func collectHistory(rows pgx.Rows) ([]domain.TransactionHistory, error) {
	defer rows.Close()
	entries := []domain.TransactionHistory{}
	for rows.Next() {
		var m models.TransactionHistory
		if err := rows.Scan(&m.HistoryID, &m.TransactionID, &m.Action, &m.ChangedBy, &m.ChangedAt, &m.OldData, &m.NewData); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		h, err := mapping.ToDomainHistory(m)
		if err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return entries, nil
}

func (r *PgxHistoryRepository) ListHistoryByTransaction(ctx context.Context, transactionID string) ([]domain.TransactionHistory, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM transaction_history h
		WHERE h.transaction_id = $1
		ORDER BY h.changed_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history of transaction %s: %w", transactionID, err)
	}
	return collectHistory(rows)
}

func (r *PgxHistoryRepository) ListHistoryByFiscalYear(ctx context.Context, fiscalYearID string, limit int) ([]domain.TransactionHistory, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	query := `
		SELECT ` + historyColumns + `
		FROM transaction_history h
		JOIN transactions t ON t.transaction_id = h.transaction_id
		WHERE t.fiscal_year_id = $1
		ORDER BY h.changed_at DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, fiscalYearID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history of fiscal year %s: %w", fiscalYearID, err)
	}
	return collectHistory(rows)
}

func (r *PgxHistoryRepository) CountHistory(ctx context.Context) (int64, error) {
	var n int64
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM transaction_history;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history rows: %w", err)
	}
	return n, nil
}

func (r *PgxHistoryRepository) SaveHistoryInTx(ctx context.Context, tx pgx.Tx, history domain.TransactionHistory) error {
	m, err := mapping.ToModelHistory(history)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO transaction_history (history_id, transaction_id, action, changed_by, changed_at, old_data, new_data)
		VALUES ($1, $2, $3, $4, $5, $6::JSONB, $7::JSONB);
	`
	_, err = tx.Exec(ctx, query, m.HistoryID, m.TransactionID, m.Action, m.ChangedBy, m.ChangedAt, nullableJSON(m.OldData), nullableJSON(m.NewData))
	if err != nil {
		return mapWriteError(err, "history of transaction "+m.TransactionID)
	}
	return nil
}

// nullableJSON sends a missing snapshot as SQL NULL rather than an empty document.
func nullableJSON(raw []byte) any {
	if raw == nil {
		return nil
	}
	return string(raw)
}

type PgxSystemHistoryRepository struct {
	BaseRepository
}

func newPgxSystemHistoryRepository(pool *pgxpool.Pool) portsrepo.SystemHistoryRepositoryFacade {
	return &PgxSystemHistoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SystemHistoryRepositoryFacade = (*PgxSystemHistoryRepository)(nil)

func (r *PgxSystemHistoryRepository) SaveSystemHistoryInTx(ctx context.Context, tx pgx.Tx, entry domain.SystemHistory) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	query := `
		INSERT INTO system_history (system_history_id, action, performed_by, performed_at, details)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := tx.Exec(ctx, query, entry.SystemHistoryID, string(entry.Action), entry.PerformedBy, entry.PerformedAt, details)
	if err != nil {
		return mapWriteError(err, "system history "+string(entry.Action))
	}
	return nil
}

func (r *PgxSystemHistoryRepository) ListSystemHistory(ctx context.Context, limit int) ([]domain.SystemHistory, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	query := `
		SELECT system_history_id, action, performed_by, performed_at, details
		FROM system_history
		ORDER BY performed_at DESC
		LIMIT $1;
	`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query system history: %w", err)
	}
	defer rows.Close()

	entries := []domain.SystemHistory{}
	for rows.Next() {
		var m models.SystemHistory
		if err := rows.Scan(&m.SystemHistoryID, &m.Action, &m.PerformedBy, &m.PerformedAt, &m.Details); err != nil {
			return nil, fmt.Errorf("failed to scan system history row: %w", err)
		}
		entries = append(entries, mapping.ToDomainSystemHistory(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating system history rows: %w", err)
	}
	return entries, nil
}
