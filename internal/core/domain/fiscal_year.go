package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FiscalYear scopes transactions, categories and starting balances.
// Exactly one fiscal year is current at any time.
type FiscalYear struct {
	FiscalYearID        string          `json:"fiscalYearID"`
	Name                string          `json:"name"`
	StartDate           time.Time       `json:"startDate"`
	EndDate             time.Time       `json:"endDate"`
	StartingBalanceCash decimal.Decimal `json:"startingBalanceCash"`
	StartingBalanceBank decimal.Decimal `json:"startingBalanceBank"`
	IsCurrent           bool            `json:"isCurrent"`
	AuditFields
}

// Contains reports whether the calendar day of t, read in t's own offset,
// lies within [StartDate, EndDate].
func (f FiscalYear) Contains(t time.Time) bool {
	day := CalendarDate(t)
	return !day.Before(DateOf(f.StartDate)) && !day.After(DateOf(f.EndDate))
}

// StartingBalanceFor returns the opening balance recorded for the given account kind.
func (f FiscalYear) StartingBalanceFor(kind AccountKind) decimal.Decimal {
	switch kind {
	case AccountKindCash:
		return f.StartingBalanceCash
	case AccountKindBank:
		return f.StartingBalanceBank
	default:
		return decimal.Zero
	}
}

// StartingTotal is the sum of both opening balances.
func (f FiscalYear) StartingTotal() decimal.Decimal {
	return f.StartingBalanceCash.Add(f.StartingBalanceBank)
}

// CategorySource selects how a new fiscal year gets its categories.
type CategorySource string

const (
	CategorySourceNone    CategorySource = "none"
	CategorySourceDefault CategorySource = "default"
	CategorySourceCopy    CategorySource = "copy"
)

// AccountBalance is the fiscal-year-scoped balance of one account.
type AccountBalance struct {
	AccountID string          `json:"accountID"`
	Name      string          `json:"name"`
	Kind      AccountKind     `json:"kind"`
	Starting  decimal.Decimal `json:"starting"`
	Current   decimal.Decimal `json:"current"`
}

// FiscalYearSummary aggregates a fiscal year's balances and totals.
type FiscalYearSummary struct {
	FiscalYear    FiscalYear       `json:"fiscalYear"`
	Balances      []AccountBalance `json:"balances"`
	TotalIncome   decimal.Decimal  `json:"totalIncome"`
	TotalExpense  decimal.Decimal  `json:"totalExpense"`
	StartingTotal decimal.Decimal  `json:"startingTotal"`
	EndingTotal   decimal.Decimal  `json:"endingTotal"`
}

// DeletionResult counts the rows removed when a fiscal year is deleted.
type DeletionResult struct {
	FiscalYearID     string   `json:"fiscalYearID"`
	FiscalYearName   string   `json:"fiscalYearName"`
	TransactionCount int64    `json:"transactionCount"`
	HistoryCount     int64    `json:"historyCount"`
	CategoryCount    int64    `json:"categoryCount"`
	ReceiptKeys      []string `json:"-"`
	ReceiptsDeleted  int      `json:"receiptsDeleted"`
	WasCurrent       bool     `json:"wasCurrent"`
	NewCurrentYearID *string  `json:"newCurrentFiscalYearID,omitempty"`
}
