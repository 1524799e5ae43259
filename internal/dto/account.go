package dto

import (
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string             `json:"accountID"`
	Name          string             `json:"name"`
	Kind          domain.AccountKind `json:"kind"`
	Balance       decimal.Decimal    `json:"balance"`
	LastUpdatedAt time.Time          `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		Name:          acc.Name,
		Kind:          acc.Kind,
		Balance:       acc.Balance,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// BalanceDriftResponse reports one corrected account.
type BalanceDriftResponse struct {
	AccountID string             `json:"accountID"`
	Kind      domain.AccountKind `json:"kind"`
	Persisted decimal.Decimal    `json:"persisted"`
	Derived   decimal.Decimal    `json:"derived"`
	Drift     decimal.Decimal    `json:"drift"`
}

// ReconcileResponse lists the accounts whose persisted balance was rewritten.
type ReconcileResponse struct {
	FiscalYearID string                 `json:"fiscalYearID"`
	Corrected    []BalanceDriftResponse `json:"corrected"`
}

// ToReconcileResponse converts a reconciliation result to the response DTO.
func ToReconcileResponse(result *domain.ReconcileResult) ReconcileResponse {
	res := ReconcileResponse{FiscalYearID: result.FiscalYearID, Corrected: make([]BalanceDriftResponse, 0, len(result.Corrected))}
	for _, d := range result.Corrected {
		res.Corrected = append(res.Corrected, BalanceDriftResponse{
			AccountID: d.AccountID,
			Kind:      d.Kind,
			Persisted: d.Persisted,
			Derived:   d.Derived,
			Drift:     d.Drift(),
		})
	}
	return res
}
