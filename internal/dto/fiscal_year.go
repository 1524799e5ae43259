package dto

import (
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateFiscalYearRequest defines the data needed to open a new fiscal year.
type CreateFiscalYearRequest struct {
	Name                 string                `json:"name" binding:"required,notblank"`
	StartDate            string                `json:"startDate" binding:"required,ledgerdate"`
	EndDate              string                `json:"endDate" binding:"required,ledgerdate"`
	StartingBalanceCash  decimal.Decimal       `json:"startingBalanceCash"`
	StartingBalanceBank  decimal.Decimal       `json:"startingBalanceBank"`
	UseCurrentBalance    bool                  `json:"useCurrentBalance"` // Take starting balances from the accounts
	CategorySource       domain.CategorySource `json:"categorySource" binding:"omitempty,oneof=none default copy"`
	CopyFromFiscalYearID *string               `json:"copyFromFiscalYearID" binding:"required_if=CategorySource copy"`
}

// UpdateFiscalYearRequest defines the editable fields of a fiscal year. Omitted fields are unchanged.
type UpdateFiscalYearRequest struct {
	Name                *string          `json:"name" binding:"omitempty,notblank"`
	StartDate           *string          `json:"startDate" binding:"omitempty,ledgerdate"`
	EndDate             *string          `json:"endDate" binding:"omitempty,ledgerdate"`
	StartingBalanceCash *decimal.Decimal `json:"startingBalanceCash"`
	StartingBalanceBank *decimal.Decimal `json:"startingBalanceBank"`
}

// DeleteFiscalYearRequest carries the confirmation for the direct deletion path.
type DeleteFiscalYearRequest struct {
	ConfirmName string `json:"confirmName" binding:"required"`
}

// FiscalYearResponse defines the data returned for a fiscal year.
type FiscalYearResponse struct {
	FiscalYearID        string          `json:"fiscalYearID"`
	Name                string          `json:"name"`
	StartDate           string          `json:"startDate"`
	EndDate             string          `json:"endDate"`
	StartingBalanceCash decimal.Decimal `json:"startingBalanceCash"`
	StartingBalanceBank decimal.Decimal `json:"startingBalanceBank"`
	IsCurrent           bool            `json:"isCurrent"`
	CreatedAt           time.Time       `json:"createdAt"`
	CreatedBy           string          `json:"createdBy"`
}

// ToFiscalYearResponse converts a domain.FiscalYear to its response DTO.
func ToFiscalYearResponse(fy *domain.FiscalYear) FiscalYearResponse {
	return FiscalYearResponse{
		FiscalYearID:        fy.FiscalYearID,
		Name:                fy.Name,
		StartDate:           fy.StartDate.Format(DateLayout),
		EndDate:             fy.EndDate.Format(DateLayout),
		StartingBalanceCash: fy.StartingBalanceCash,
		StartingBalanceBank: fy.StartingBalanceBank,
		IsCurrent:           fy.IsCurrent,
		CreatedAt:           fy.CreatedAt,
		CreatedBy:           fy.CreatedBy,
	}
}

// ToListFiscalYearResponse converts a slice of fiscal years.
func ToListFiscalYearResponse(years []domain.FiscalYear) []FiscalYearResponse {
	res := make([]FiscalYearResponse, len(years))
	for i, fy := range years {
		res[i] = ToFiscalYearResponse(&fy)
	}
	return res
}

// FiscalYearSummaryResponse is the balance sheet of one fiscal year.
type FiscalYearSummaryResponse struct {
	FiscalYear    FiscalYearResponse      `json:"fiscalYear"`
	Balances      []domain.AccountBalance `json:"balances"`
	TotalIncome   decimal.Decimal         `json:"totalIncome"`
	TotalExpense  decimal.Decimal         `json:"totalExpense"`
	StartingTotal decimal.Decimal         `json:"startingTotal"`
	EndingTotal   decimal.Decimal         `json:"endingTotal"`
}

// ToFiscalYearSummaryResponse converts a summary to its response DTO.
func ToFiscalYearSummaryResponse(s *domain.FiscalYearSummary) FiscalYearSummaryResponse {
	return FiscalYearSummaryResponse{
		FiscalYear:    ToFiscalYearResponse(&s.FiscalYear),
		Balances:      s.Balances,
		TotalIncome:   s.TotalIncome,
		TotalExpense:  s.TotalExpense,
		StartingTotal: s.StartingTotal,
		EndingTotal:   s.EndingTotal,
	}
}

// DeleteFiscalYearResponse reports what the direct deletion removed.
type DeleteFiscalYearResponse struct {
	Deletion domain.DeletionResult `json:"deletion"`
	Warning  string                `json:"warning,omitempty"`
}
