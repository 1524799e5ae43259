package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// Transaction is a single ledger entry. Income and expense entries touch AccountID,
// transfers move money from FromAccountID to ToAccountID.
type Transaction struct {
	TransactionID   string          `json:"transactionID"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Category        *string         `json:"category,omitempty"`
	AccountID       *string         `json:"accountID,omitempty"`
	FromAccountID   *string         `json:"fromAccountID,omitempty"`
	ToAccountID     *string         `json:"toAccountID,omitempty"`
	FiscalYearID    string          `json:"fiscalYearID"`
	RecordedBy      string          `json:"recordedBy"`
	RecordedAt      time.Time       `json:"recordedAt"` // Also the ledger date
	ReceiptImageURL *string         `json:"receiptImageURL,omitempty"`
	IsDeleted       bool            `json:"isDeleted"`
	DeletedAt       *time.Time      `json:"deletedAt,omitempty"`
	AuditFields
}

// MoneyScale is the number of decimal places stored for amounts and balances.
const MoneyScale = 2

// maxMoney bounds the magnitude of a stored amount, matching NUMERIC(14, 2).
var maxMoney = decimal.New(1, 14-MoneyScale)

// ValidateMoney rejects values the ledger cannot store exactly: more than two decimal
// places, or twelve or more integer digits.
func ValidateMoney(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(MoneyScale)) {
		return fmt.Errorf("%w: %s must have at most %d decimal places", apperrors.ErrValidation, field, MoneyScale)
	}
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return fmt.Errorf("%w: %s must be less than %s in magnitude", apperrors.ErrValidation, field, maxMoney.String())
	}
	return nil
}

// Validate checks the field rules every stored transaction must satisfy.
// Fiscal year containment is checked by the caller, which knows the year.
func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, t.Type)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if err := ValidateMoney("amount", t.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	}

	if t.Type == Transfer {
		if !present(t.FromAccountID) || !present(t.ToAccountID) {
			return fmt.Errorf("%w: transfer requires both fromAccountID and toAccountID", apperrors.ErrValidation)
		}
		if t.AccountID != nil {
			return fmt.Errorf("%w: transfer must not set accountID", apperrors.ErrValidation)
		}
		if *t.FromAccountID == *t.ToAccountID {
			return fmt.Errorf("%w: transfer source and destination must differ", apperrors.ErrValidation)
		}
		return nil
	}

	if !present(t.AccountID) {
		return fmt.Errorf("%w: %s requires accountID", apperrors.ErrValidation, t.Type)
	}
	if t.FromAccountID != nil || t.ToAccountID != nil {
		return fmt.Errorf("%w: %s must not set transfer accounts", apperrors.ErrValidation, t.Type)
	}
	if !present(t.Category) {
		return fmt.Errorf("%w: category is required for %s", apperrors.ErrValidation, t.Type)
	}
	return nil
}

// AffectedAccountIDs lists the accounts whose balance this transaction moves.
func (t Transaction) AffectedAccountIDs() []string {
	if t.Type == Transfer {
		ids := make([]string, 0, 2)
		if t.FromAccountID != nil {
			ids = append(ids, *t.FromAccountID)
		}
		if t.ToAccountID != nil {
			ids = append(ids, *t.ToAccountID)
		}
		return ids
	}
	if t.AccountID != nil {
		return []string{*t.AccountID}
	}
	return nil
}

// Touches reports whether the transaction moves the given account.
func (t Transaction) Touches(accountID string) bool {
	for _, id := range t.AffectedAccountIDs() {
		if id == accountID {
			return true
		}
	}
	return false
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
