package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FiscalYear is a row of the fiscal_years table.
type FiscalYear struct {
	FiscalYearID        string          `db:"fiscal_year_id"`
	Name                string          `db:"name"`
	StartDate           time.Time       `db:"start_date"`
	EndDate             time.Time       `db:"end_date"`
	StartingBalanceCash decimal.Decimal `db:"starting_balance_cash"`
	StartingBalanceBank decimal.Decimal `db:"starting_balance_bank"`
	IsCurrent           bool            `db:"is_current"`
	AuditFields
}

// Category is a row of the categories table.
type Category struct {
	CategoryID   string `db:"category_id"`
	FiscalYearID string `db:"fiscal_year_id"`
	Name         string `db:"name"`
	Type         string `db:"type"`
	SortOrder    int    `db:"sort_order"`
	AuditFields
}
