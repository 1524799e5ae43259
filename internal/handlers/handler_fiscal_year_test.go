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

func sampleFiscalYear(id string, current bool) *domain.FiscalYear {
	return &domain.FiscalYear{
		FiscalYearID:        id,
		Name:                "2025年度",
		StartDate:           time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:             time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		StartingBalanceCash: decimal.NewFromInt(10000),
		StartingBalanceBank: decimal.NewFromInt(3000),
		IsCurrent:           current,
	}
}

func (suite *HandlerTestSuite) TestCreateFiscalYear_Success() {
	matchesRequest := mock.MatchedBy(func(req dto.CreateFiscalYearRequest) bool {
		return req.Name == "2025年度" && req.StartDate == "2025-04-01" && req.CategorySource == domain.CategorySourceDefault &&
			req.StartingBalanceCash.Equal(decimal.NewFromInt(10000))
	})
	suite.mockFiscalYear.On("CreateFiscalYear", mock.Anything, matchesRequest, testUserID).Return(sampleFiscalYear("fy-2025", true), nil).Once()

	w := suite.request(http.MethodPost, "/api/v1/fiscal-years", map[string]any{
		"name":                "2025年度",
		"startDate":           "2025-04-01",
		"endDate":             "2026-03-31",
		"startingBalanceCash": "10000",
		"startingBalanceBank": "3000",
		"categorySource":      "default",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.FiscalYearResponse
	suite.decode(w, &resp)
	suite.Equal("2025-04-01", resp.StartDate)
	suite.Equal("2026-03-31", resp.EndDate)
	suite.True(resp.IsCurrent)
}

func (suite *HandlerTestSuite) TestCreateFiscalYear_CopyNeedsSource() {
	w := suite.request(http.MethodPost, "/api/v1/fiscal-years", map[string]any{
		"name":           "2026年度",
		"startDate":      "2026-04-01",
		"endDate":        "2027-03-31",
		"categorySource": "copy",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockFiscalYear.AssertNotCalled(suite.T(), "CreateFiscalYear", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestGetCurrentFiscalYear_NoneExists() {
	suite.mockFiscalYear.On("GetCurrentFiscalYear", mock.Anything).Return(nil, fmt.Errorf("%w: no fiscal year exists", apperrors.ErrNotFound)).Once()

	w := suite.request(http.MethodGet, "/api/v1/fiscal-years/current", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestActivateFiscalYear() {
	suite.mockFiscalYear.On("SetCurrentFiscalYear", mock.Anything, "fy-2025", testUserID).Return(sampleFiscalYear("fy-2025", true), nil).Once()

	w := suite.request(http.MethodPost, "/api/v1/fiscal-years/fy-2025/activate", nil)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestGetFiscalYearSummary() {
	summary := &domain.FiscalYearSummary{
		FiscalYear:    *sampleFiscalYear("fy-2025", true),
		TotalIncome:   decimal.NewFromInt(5000),
		TotalExpense:  decimal.NewFromInt(500),
		StartingTotal: decimal.NewFromInt(13000),
		EndingTotal:   decimal.NewFromInt(17500),
	}
	suite.mockFiscalYear.On("GetFiscalYearSummary", mock.Anything, "fy-2025").Return(summary, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/fiscal-years/fy-2025/summary", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.FiscalYearSummaryResponse
	suite.decode(w, &resp)
	suite.True(decimal.NewFromInt(17500).Equal(resp.EndingTotal))
	suite.Equal("fy-2025", resp.FiscalYear.FiscalYearID)
}

func (suite *HandlerTestSuite) TestDeleteFiscalYear_DirectPathDisabled() {
	suite.mockFiscalYear.On("DeleteFiscalYearDirect", mock.Anything, "fy-2025", "山田", testUserID).
		Return(nil, fmt.Errorf("%w: direct fiscal year deletion is disabled", apperrors.ErrForbidden)).Once()

	w := suite.request(http.MethodDelete, "/api/v1/fiscal-years/fy-2025", dto.DeleteFiscalYearRequest{ConfirmName: "山田"})

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteFiscalYear_PartialFailureWarns() {
	result := &domain.DeletionResult{FiscalYearID: "fy-2025", ReceiptsDeleted: 0}
	suite.mockFiscalYear.On("DeleteFiscalYearDirect", mock.Anything, "fy-2025", "山田", testUserID).
		Return(result, fmt.Errorf("%w: removing receipts", apperrors.ErrPartialFailure)).Once()

	w := suite.request(http.MethodDelete, "/api/v1/fiscal-years/fy-2025", dto.DeleteFiscalYearRequest{ConfirmName: "山田"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.DeleteFiscalYearResponse
	suite.decode(w, &resp)
	suite.NotEmpty(resp.Warning)
}

func (suite *HandlerTestSuite) TestListFiscalYearHistory_PassesLimit() {
	suite.mockTransaction.On("ListFiscalYearHistory", mock.Anything, "fy-2025", 20).Return([]domain.TransactionHistory{}, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/fiscal-years/fy-2025/history?limit=20", nil)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestListCategories_ByType() {
	categories := []domain.Category{{CategoryID: "c1", Name: "交通費", Type: domain.CategoryExpense, SortOrder: 1, FiscalYearID: "fy-2025"}}
	suite.mockCategory.On("ListCategories", mock.Anything, "fy-2025", mock.MatchedBy(func(t *domain.CategoryType) bool {
		return t != nil && *t == domain.CategoryExpense
	})).Return(categories, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/fiscal-years/fy-2025/categories?type=expense", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.CategoryResponse
	suite.decode(w, &resp)
	suite.Require().Len(resp, 1)
	suite.Equal("交通費", resp[0].Name)
}

func (suite *HandlerTestSuite) TestCreateCategory_Duplicate() {
	suite.mockCategory.On("CreateCategory", mock.Anything, "fy-2025", dto.CreateCategoryRequest{Name: "会費", Type: domain.CategoryIncome}, testUserID).
		Return(nil, fmt.Errorf("%w: category 会費 already exists", apperrors.ErrDuplicate)).Once()

	w := suite.request(http.MethodPost, "/api/v1/fiscal-years/fy-2025/categories", map[string]string{"name": "会費", "type": "income"})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteCategory() {
	suite.mockCategory.On("DeleteCategory", mock.Anything, "fy-2025", "c1").Return(nil).Once()

	w := suite.request(http.MethodDelete, "/api/v1/fiscal-years/fy-2025/categories/c1", nil)

	suite.Equal(http.StatusNoContent, w.Code)
}
