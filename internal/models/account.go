package models

import (
	"github.com/shopspring/decimal"
)

// AccountKind is the stored kind of an account.
type AccountKind string

// Account is a row of the accounts table.
type Account struct {
	AccountID   string          `db:"account_id"`
	Name        string          `db:"name"`
	Kind        AccountKind     `db:"kind"`
	Balance     decimal.Decimal `db:"balance"` // Persisted running balance
	AuditFields                 // Embed common audit fields
}
