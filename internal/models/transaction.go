package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table.
type Transaction struct {
	TransactionID   string          `db:"transaction_id"`
	Type            string          `db:"type"`
	Amount          decimal.Decimal `db:"amount"`
	Description     string          `db:"description"`
	Category        sql.NullString  `db:"category"`
	AccountID       sql.NullString  `db:"account_id"`
	FromAccountID   sql.NullString  `db:"from_account_id"`
	ToAccountID     sql.NullString  `db:"to_account_id"`
	FiscalYearID    string          `db:"fiscal_year_id"`
	RecordedBy      string          `db:"recorded_by"`
	RecordedAt      time.Time       `db:"recorded_at"`
	ReceiptImageURL sql.NullString  `db:"receipt_image_url"`
	IsDeleted       bool            `db:"is_deleted"`
	DeletedAt       sql.NullTime    `db:"deleted_at"`
	AuditFields
}

// TransactionHistory is a row of the transaction_history table. Snapshots are raw JSON.
type TransactionHistory struct {
	HistoryID     string    `db:"history_id"`
	TransactionID string    `db:"transaction_id"`
	Action        string    `db:"action"`
	ChangedBy     string    `db:"changed_by"`
	ChangedAt     time.Time `db:"changed_at"`
	OldData       []byte    `db:"old_data"`
	NewData       []byte    `db:"new_data"`
}

// SystemHistory is a row of the system_history table.
type SystemHistory struct {
	SystemHistoryID string         `db:"system_history_id"`
	Action          string         `db:"action"`
	PerformedBy     string         `db:"performed_by"`
	PerformedAt     time.Time      `db:"performed_at"`
	Details         map[string]any `db:"details"`
}
