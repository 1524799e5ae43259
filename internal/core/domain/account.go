package domain

import (
	"github.com/shopspring/decimal"
)

// AccountKind identifies which of the two club accounts a row represents.
type AccountKind string

const (
	AccountKindCash AccountKind = "cash"
	AccountKindBank AccountKind = "bank"
)

// Account is one of the club's money holders. The two accounts are shared by every fiscal year.
type Account struct {
	AccountID string          `json:"accountID"`
	Name      string          `json:"name"`
	Kind      AccountKind     `json:"kind"`
	Balance   decimal.Decimal `json:"balance"` // Running total maintained by the balance engine
	AuditFields
}

// BalanceDrift reports how far a persisted balance had moved from the derived one.
type BalanceDrift struct {
	AccountID string          `json:"accountID"`
	Kind      AccountKind     `json:"kind"`
	Persisted decimal.Decimal `json:"persisted"`
	Derived   decimal.Decimal `json:"derived"`
}

// Drift returns derived minus persisted.
func (b BalanceDrift) Drift() decimal.Decimal {
	return b.Derived.Sub(b.Persisted)
}

// ReconcileResult lists the accounts whose persisted balance was rewritten.
type ReconcileResult struct {
	FiscalYearID string         `json:"fiscalYearID"`
	Corrected    []BalanceDrift `json:"corrected"`
}
