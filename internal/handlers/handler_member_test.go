package handlers_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) TestListMembers() {
	suite.mockMember.On("ListMembers", mock.Anything).Return([]domain.User{*sampleUser()}, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/members", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListUsersResponse
	suite.decode(w, &resp)
	suite.Require().Len(resp.Users, 1)
	suite.Equal("花子", resp.Users[0].DisplayName)
}

func (suite *HandlerTestSuite) TestDeleteMember_Self() {
	suite.mockMember.On("DeleteMember", mock.Anything, testUserID, testUserID).
		Return(fmt.Errorf("%w: members cannot delete themselves", apperrors.ErrForbidden)).Once()

	w := suite.request(http.MethodDelete, "/api/v1/members/"+testUserID, nil)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteMember_Success() {
	suite.mockMember.On("DeleteMember", mock.Anything, "user-taro", testUserID).Return(nil).Once()

	w := suite.request(http.MethodDelete, "/api/v1/members/user-taro", nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *HandlerTestSuite) TestCreateInviteCode() {
	code := &domain.InviteCode{InviteCodeID: "ic-1", Code: "K7Q2ZP", CreatedBy: testUserID, CreatedAt: time.Now(), ExpiresAt: time.Now().Add(7 * 24 * time.Hour)}
	suite.mockInviteCode.On("CreateInviteCode", mock.Anything, testUserID).Return(code, nil).Once()

	w := suite.request(http.MethodPost, "/api/v1/invite-codes", nil)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.InviteCodeResponse
	suite.decode(w, &resp)
	suite.Equal("K7Q2ZP", resp.Code)
	suite.False(resp.IsUsed)
}

func (suite *HandlerTestSuite) TestDeleteInviteCode_NotFound() {
	suite.mockInviteCode.On("DeleteInviteCode", mock.Anything, "ic-404").Return(fmt.Errorf("%w: invite code", apperrors.ErrNotFound)).Once()

	w := suite.request(http.MethodDelete, "/api/v1/invite-codes/ic-404", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestGetStorageUsage() {
	usage := domain.EstimateUsage(1024, 512, 10, 500, 1024)
	suite.mockStorage.On("GetStorageUsage", mock.Anything).Return(&usage, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/storage/usage", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.StorageUsage
	suite.decode(w, &resp)
	suite.InDelta(2.0, resp.DatabaseMB, 0.0001)
	suite.Equal(int64(10), resp.ImageCount)
}

func (suite *HandlerTestSuite) TestUploadReceipt_Success() {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "receipt.png")
	suite.Require().NoError(err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n fake image"))
	suite.Require().NoError(err)
	suite.Require().NoError(mw.Close())

	receipt := &domain.Receipt{Key: "2025/05/abc.png", URL: "http://localhost:8080/receipts/2025/05/abc.png", ContentType: "image/png", Size: 19}
	suite.mockReceipt.On("UploadReceipt", mock.Anything, "receipt.png", mock.Anything, testUserID).Return(receipt, nil).Once()

	req, err := http.NewRequest(http.MethodPost, "/api/v1/receipts", &buf)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(testUserID))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.ReceiptResponse
	suite.decode(w, &resp)
	suite.Equal(receipt.URL, resp.URL)
}

func (suite *HandlerTestSuite) TestUploadReceipt_MissingFile() {
	w := suite.request(http.MethodPost, "/api/v1/receipts", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockReceipt.AssertNotCalled(suite.T(), "UploadReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestListAccounts() {
	accounts := []domain.Account{
		{AccountID: "acc-cash", Name: "現金", Kind: domain.AccountKindCash, Balance: decimal.NewFromInt(12000)},
		{AccountID: "acc-bank", Name: "銀行", Kind: domain.AccountKindBank, Balance: decimal.NewFromInt(-500)},
	}
	suite.mockAccount.On("ListAccounts", mock.Anything).Return(accounts, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/accounts", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.AccountResponse
	suite.decode(w, &resp)
	suite.Require().Len(resp, 2)
	suite.True(decimal.NewFromInt(-500).Equal(resp[1].Balance), "balances may be negative")
}

func (suite *HandlerTestSuite) TestReconcileBalances() {
	result := &domain.ReconcileResult{
		FiscalYearID: "fy-2025",
		Corrected: []domain.BalanceDrift{
			{AccountID: "acc-cash", Kind: domain.AccountKindCash, Persisted: decimal.NewFromInt(9000), Derived: decimal.NewFromInt(9500)},
		},
	}
	suite.mockAccount.On("ReconcileBalances", mock.Anything, testUserID).Return(result, nil).Once()

	w := suite.request(http.MethodPost, "/api/v1/accounts/reconcile", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ReconcileResponse
	suite.decode(w, &resp)
	suite.Require().Len(resp.Corrected, 1)
	suite.True(decimal.NewFromInt(500).Equal(resp.Corrected[0].Drift))
}

func (suite *HandlerTestSuite) TestListSystemHistory_DefaultLimit() {
	entries := []domain.SystemHistory{{SystemHistoryID: "sh-1", Action: domain.SystemFiscalYearDeleted, PerformedBy: testUserID, Details: map[string]any{"fiscalYearName": "2023年度"}}}
	suite.mockSystemHistory.On("ListSystemHistory", mock.Anything, 0).Return(entries, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/system-history", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "fiscal_year_deleted")
}
