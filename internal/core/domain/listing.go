package domain

import "time"

// TransactionFilter narrows a ledger listing. Nil fields do not filter.
type TransactionFilter struct {
	FiscalYearID   string
	Type           *TransactionType
	AccountID      *string
	MonthStart     *time.Time // First instant of the month, inclusive
	MonthEnd       *time.Time // First instant of the next month, exclusive
	IncludeDeleted bool
	Limit          int
	AfterRecorded  *time.Time
	AfterCreated   *time.Time
}

// TransactionPage is one page of a ledger listing.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	NextToken    *string       `json:"nextToken,omitempty"`
}
