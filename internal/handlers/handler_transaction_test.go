package handlers_test

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func sampleTransaction(id string) *domain.Transaction {
	now := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	return &domain.Transaction{
		TransactionID: id,
		Type:          domain.Income,
		Amount:        decimal.NewFromInt(5000),
		Description:   "会費 5月分",
		Category:      strPtr("会費"),
		AccountID:     strPtr("acc-cash"),
		FiscalYearID:  "fy-2025",
		RecordedBy:    testUserID,
		RecordedAt:    now,
		AuditFields:   domain.AuditFields{CreatedAt: now, CreatedBy: testUserID, LastUpdatedAt: now, LastUpdatedBy: testUserID},
	}
}

func (suite *HandlerTestSuite) TestCreateTransaction_Success() {
	body := map[string]any{
		"type":        "income",
		"amount":      "5000",
		"description": "会費 5月分",
		"category":    "会費",
		"accountID":   "acc-cash",
		"recordedAt":  "2025-05-10",
	}
	matchesRequest := mock.MatchedBy(func(req dto.CreateTransactionRequest) bool {
		return req.Type == domain.Income && req.Amount.Equal(decimal.NewFromInt(5000)) &&
			req.AccountID != nil && *req.AccountID == "acc-cash" && req.RecordedAt == "2025-05-10"
	})
	suite.mockTransaction.On("CreateTransaction", mock.Anything, matchesRequest, testUserID).Return(sampleTransaction("txn-1"), nil).Once()

	w := suite.request(http.MethodPost, "/api/v1/transactions", body)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.TransactionResponse
	suite.decode(w, &resp)
	suite.Equal("txn-1", resp.TransactionID)
	suite.True(decimal.NewFromInt(5000).Equal(resp.Amount))
	suite.Equal("fy-2025", resp.FiscalYearID)
}

func (suite *HandlerTestSuite) TestCreateTransaction_RequiresToken() {
	w := suite.requestAs("", http.MethodPost, "/api/v1/transactions", map[string]any{"type": "income"})

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockTransaction.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCreateTransaction_InvalidBody() {
	w := suite.request(http.MethodPost, "/api/v1/transactions", map[string]any{
		"type":       "income",
		"amount":     "100",
		"recordedAt": "2025-05-10",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.errorMessage(w), "Invalid request format")
	suite.mockTransaction.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCreateTransaction_ServiceErrorsMapToStatus() {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "out of range", err: fmt.Errorf("%w: 2026-04-02 is after the fiscal year", apperrors.ErrOutOfRange), status: http.StatusBadRequest},
		{name: "no fiscal year", err: fmt.Errorf("%w: no fiscal year exists", apperrors.ErrNotFound), status: http.StatusNotFound},
		{name: "database down", err: fmt.Errorf("%w: connection refused", apperrors.ErrCollaborator), status: http.StatusBadGateway},
		{name: "unexpected", err: fmt.Errorf("boom"), status: http.StatusInternalServerError},
	}

	body := map[string]any{
		"type":        "expense",
		"amount":      "800",
		"description": "コピー用紙",
		"category":    "印刷費",
		"accountID":   "acc-cash",
		"recordedAt":  "2026-04-02",
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			call := suite.mockTransaction.On("CreateTransaction", mock.Anything, mock.Anything, testUserID).Return(nil, tt.err).Once()
			defer call.Unset()

			w := suite.request(http.MethodPost, "/api/v1/transactions", body)
			suite.Equal(tt.status, w.Code)
			if tt.status == http.StatusInternalServerError {
				suite.NotContains(suite.errorMessage(w), "boom")
			}
		})
	}
}

func (suite *HandlerTestSuite) TestDeleteTransaction_ConfirmationMismatch() {
	suite.mockTransaction.On("DeleteTransaction", mock.Anything, "txn-1", "山田 ", testUserID).
		Return(nil, fmt.Errorf("%w: type your display name to confirm", apperrors.ErrConfirmation)).Once()

	w := suite.request(http.MethodDelete, "/api/v1/transactions/txn-1", map[string]any{"confirmName": "山田 "})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.errorMessage(w), "confirm")
}

func (suite *HandlerTestSuite) TestDeleteTransaction_Success() {
	deleted := sampleTransaction("txn-1")
	deleted.IsDeleted = true
	suite.mockTransaction.On("DeleteTransaction", mock.Anything, "txn-1", "山田", testUserID).Return(deleted, nil).Once()

	w := suite.request(http.MethodDelete, "/api/v1/transactions/txn-1", map[string]any{"confirmName": "山田"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TransactionResponse
	suite.decode(w, &resp)
	suite.True(resp.IsDeleted)
}

func (suite *HandlerTestSuite) TestUpdateTransaction_StaleEditIsConflict() {
	suite.mockTransaction.On("UpdateTransaction", mock.Anything, "txn-1", mock.AnythingOfType("dto.UpdateTransactionRequest"), testUserID).
		Return(nil, fmt.Errorf("%w: transaction was changed by someone else", apperrors.ErrConflict)).Once()

	w := suite.request(http.MethodPut, "/api/v1/transactions/txn-1", map[string]any{
		"type":                  "income",
		"amount":                "6000",
		"description":           "会費 5月分",
		"category":              "会費",
		"accountID":             "acc-cash",
		"recordedAt":            "2025-05-10",
		"expectedLastUpdatedAt": "2025-05-10T09:00:00Z",
	})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestRestoreTransaction_NotDeleted() {
	suite.mockTransaction.On("RestoreTransaction", mock.Anything, "txn-1", testUserID).
		Return(nil, fmt.Errorf("%w: transaction is not deleted", apperrors.ErrConflict)).Once()

	w := suite.request(http.MethodPost, "/api/v1/transactions/txn-1/restore", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestListTransactions_PassesFilters() {
	token := "opaque-token"
	matchesParams := mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
		return p.FiscalYearID == "fy-2025" && p.Month == "2025-05" && p.Limit == 2 &&
			p.Type != nil && *p.Type == domain.Expense && p.AccountID != nil && *p.AccountID == "acc-bank" && p.IncludeDeleted
	})
	page := &domain.TransactionPage{Transactions: []domain.Transaction{*sampleTransaction("txn-2"), *sampleTransaction("txn-1")}, NextToken: &token}
	suite.mockTransaction.On("ListTransactions", mock.Anything, matchesParams).Return(page, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/transactions?fiscalYearID=fy-2025&type=expense&accountID=acc-bank&month=2025-05&includeDeleted=true&limit=2", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.ListTransactionsResponse
	suite.decode(w, &resp)
	suite.Len(resp.Transactions, 2)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(token, *resp.NextToken)
}

func (suite *HandlerTestSuite) TestListTransactions_DefaultLimit() {
	suite.mockTransaction.On("ListTransactions", mock.Anything, mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
		return p.Limit == 50 && p.FiscalYearID == ""
	})).Return(&domain.TransactionPage{}, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/transactions", nil)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestListTransactions_InvalidQuery() {
	for _, query := range []string{"limit=500", "month=May", "type=refund"} {
		w := suite.request(http.MethodGet, "/api/v1/transactions?"+query, nil)
		suite.Equal(http.StatusBadRequest, w.Code, query)
	}
	suite.mockTransaction.AssertNotCalled(suite.T(), "ListTransactions", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestListTransactionHistory() {
	before := sampleTransaction("txn-1")
	after := sampleTransaction("txn-1")
	after.Amount = decimal.NewFromInt(6000)
	rows := []domain.TransactionHistory{
		{HistoryID: "h2", TransactionID: "txn-1", Action: domain.HistoryUpdated, ChangedBy: testUserID, OldData: before, NewData: after},
		{HistoryID: "h1", TransactionID: "txn-1", Action: domain.HistoryCreated, ChangedBy: testUserID, NewData: before},
	}
	suite.mockTransaction.On("ListTransactionHistory", mock.Anything, "txn-1").Return(rows, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/transactions/txn-1/history", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.HistoryResponse
	suite.decode(w, &resp)
	suite.Require().Len(resp, 2)
	suite.Require().NotNil(resp[0].OldData)
	suite.True(decimal.NewFromInt(6000).Equal(resp[0].NewData.Amount))
	suite.Nil(resp[1].OldData)
}
