package dto

import (
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to record a ledger entry.
// Income and expense entries set AccountID, transfers set FromAccountID and ToAccountID.
type CreateTransactionRequest struct {
	Type            domain.TransactionType `json:"type" binding:"required,oneof=income expense transfer"`
	Amount          decimal.Decimal        `json:"amount"`
	Description     string                 `json:"description" binding:"required,notblank,max=200"`
	Category        *string                `json:"category"`
	AccountID       *string                `json:"accountID"`
	FromAccountID   *string                `json:"fromAccountID"`
	ToAccountID     *string                `json:"toAccountID"`
	RecordedAt      string                 `json:"recordedAt" binding:"required,ledgerdate"`
	ReceiptImageURL *string                `json:"receiptImageURL"`
	FiscalYearID    *string                `json:"fiscalYearID"` // Defaults to the current fiscal year
}

// UpdateTransactionRequest replaces the editable fields of a ledger entry.
// ExpectedLastUpdatedAt, when given, must match the stored row or the edit is refused.
type UpdateTransactionRequest struct {
	Type                  domain.TransactionType `json:"type" binding:"required,oneof=income expense transfer"`
	Amount                decimal.Decimal        `json:"amount"`
	Description           string                 `json:"description" binding:"required,notblank,max=200"`
	Category              *string                `json:"category"`
	AccountID             *string                `json:"accountID"`
	FromAccountID         *string                `json:"fromAccountID"`
	ToAccountID           *string                `json:"toAccountID"`
	RecordedAt            string                 `json:"recordedAt" binding:"required,ledgerdate"`
	ReceiptImageURL       *string                `json:"receiptImageURL"`
	ExpectedLastUpdatedAt *time.Time             `json:"expectedLastUpdatedAt"`
}

// DeleteTransactionRequest carries the acting member's display name as confirmation.
type DeleteTransactionRequest struct {
	ConfirmName string `json:"confirmName" binding:"required"`
}

// ListTransactionsParams defines query parameters for the ledger listing.
type ListTransactionsParams struct {
	FiscalYearID   string                  `form:"fiscalYearID"`
	Type           *domain.TransactionType `form:"type" binding:"omitempty,oneof=income expense transfer"`
	AccountID      *string                 `form:"accountID"`
	Month          string                  `form:"month" binding:"omitempty,datetime=2006-01"`
	IncludeDeleted bool                    `form:"includeDeleted"`
	Limit          int                     `form:"limit,default=50" binding:"min=1,max=200"`
	NextToken      string                  `form:"nextToken"`
}

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	TransactionID   string                 `json:"transactionID"`
	Type            domain.TransactionType `json:"type"`
	Amount          decimal.Decimal        `json:"amount"`
	Description     string                 `json:"description"`
	Category        *string                `json:"category,omitempty"`
	AccountID       *string                `json:"accountID,omitempty"`
	FromAccountID   *string                `json:"fromAccountID,omitempty"`
	ToAccountID     *string                `json:"toAccountID,omitempty"`
	FiscalYearID    string                 `json:"fiscalYearID"`
	RecordedBy      string                 `json:"recordedBy"`
	RecordedAt      time.Time              `json:"recordedAt"`
	ReceiptImageURL *string                `json:"receiptImageURL,omitempty"`
	IsDeleted       bool                   `json:"isDeleted"`
	DeletedAt       *time.Time             `json:"deletedAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	LastUpdatedAt   time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy   string                 `json:"lastUpdatedBy"`
}

// ListTransactionsResponse is one page of the ledger.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   txn.TransactionID,
		Type:            txn.Type,
		Amount:          txn.Amount,
		Description:     txn.Description,
		Category:        txn.Category,
		AccountID:       txn.AccountID,
		FromAccountID:   txn.FromAccountID,
		ToAccountID:     txn.ToAccountID,
		FiscalYearID:    txn.FiscalYearID,
		RecordedBy:      txn.RecordedBy,
		RecordedAt:      txn.RecordedAt,
		ReceiptImageURL: txn.ReceiptImageURL,
		IsDeleted:       txn.IsDeleted,
		DeletedAt:       txn.DeletedAt,
		CreatedAt:       txn.CreatedAt,
		LastUpdatedAt:   txn.LastUpdatedAt,
		LastUpdatedBy:   txn.LastUpdatedBy,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToTransactionResponse(&txn)
	}
	return responses
}

// ToListTransactionsResponse converts a page of the ledger.
func ToListTransactionsResponse(page *domain.TransactionPage) ListTransactionsResponse {
	return ListTransactionsResponse{
		Transactions: ToTransactionResponses(page.Transactions),
		NextToken:    page.NextToken,
	}
}

// HistoryResponse defines the data returned for a history row.
type HistoryResponse struct {
	HistoryID     string               `json:"historyID"`
	TransactionID string               `json:"transactionID"`
	Action        domain.HistoryAction `json:"action"`
	ChangedBy     string               `json:"changedBy"`
	ChangedAt     time.Time            `json:"changedAt"`
	OldData       *TransactionResponse `json:"oldData,omitempty"`
	NewData       *TransactionResponse `json:"newData,omitempty"`
}

// ToHistoryResponses converts history rows, snapshots included.
func ToHistoryResponses(rows []domain.TransactionHistory) []HistoryResponse {
	res := make([]HistoryResponse, len(rows))
	for i, h := range rows {
		res[i] = HistoryResponse{
			HistoryID:     h.HistoryID,
			TransactionID: h.TransactionID,
			Action:        h.Action,
			ChangedBy:     h.ChangedBy,
			ChangedAt:     h.ChangedAt,
		}
		if h.OldData != nil {
			old := ToTransactionResponse(h.OldData)
			res[i].OldData = &old
		}
		if h.NewData != nil {
			next := ToTransactionResponse(h.NewData)
			res[i].NewData = &next
		}
	}
	return res
}
