package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/core/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type FiscalYearServiceTestSuite struct {
	suite.Suite
	mockFYRepo       *MockFiscalYearRepository
	mockCategoryRepo *MockCategoryRepository
	mockAccountRepo  *MockAccountRepository
	mockTxnRepo      *MockTransactionRepository
	mockUserRepo     *MockUserRepository
	mockSystemRepo   *MockSystemHistoryRepository
	mockBlobStore    *MockBlobStore
	tx               fakeTx
	userID           string
	accounts         []domain.Account
}

func (suite *FiscalYearServiceTestSuite) SetupTest() {
	suite.mockFYRepo = new(MockFiscalYearRepository)
	suite.mockCategoryRepo = new(MockCategoryRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockSystemRepo = new(MockSystemHistoryRepository)
	suite.mockBlobStore = new(MockBlobStore)
	suite.tx = fakeTx{}
	suite.userID = "user-1"
	suite.accounts = []domain.Account{
		{AccountID: cashAccountID, Kind: domain.AccountKindCash, Balance: decimal.NewFromInt(500)},
		{AccountID: bankAccountID, Kind: domain.AccountKindBank, Balance: decimal.NewFromInt(3000)},
	}
}

func (suite *FiscalYearServiceTestSuite) TearDownTest() {
	suite.mockFYRepo.AssertExpectations(suite.T())
	suite.mockCategoryRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockSystemRepo.AssertExpectations(suite.T())
	suite.mockBlobStore.AssertExpectations(suite.T())
}

func TestFiscalYearServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FiscalYearServiceTestSuite))
}

func (suite *FiscalYearServiceTestSuite) newService(options ...services.FiscalYearServiceOption) portssvc.FiscalYearSvcFacade {
	return services.NewFiscalYearService(suite.mockFYRepo, suite.mockCategoryRepo, suite.mockAccountRepo, suite.mockTxnRepo,
		suite.mockUserRepo, suite.mockSystemRepo, suite.mockBlobStore, options...)
}

func (suite *FiscalYearServiceTestSuite) TestCreateFiscalYear_FirstYearBecomesCurrent() {
	ctx := context.Background()
	req := dto.CreateFiscalYearRequest{
		Name:                "2025年度",
		StartDate:           "2025-04-01",
		EndDate:             "2026-03-31",
		StartingBalanceCash: decimal.NewFromInt(10000),
		StartingBalanceBank: decimal.NewFromInt(3000),
		CategorySource:      domain.CategorySourceDefault,
	}

	expectCommit(&suite.mockFYRepo.Mock, suite.tx)
	suite.mockFYRepo.On("HasCurrentFiscalYearInTx", ctx, suite.tx).Return(false, nil).Once()
	suite.mockFYRepo.On("SaveFiscalYearInTx", ctx, suite.tx, mock.MatchedBy(func(fy domain.FiscalYear) bool { return fy.IsCurrent })).Return(nil).Once()
	suite.mockCategoryRepo.On("SaveCategoriesInTx", ctx, suite.tx, mock.MatchedBy(func(cats []domain.Category) bool {
		return len(cats) == 13 && cats[0].CategoryID != ""
	})).Return(nil).Once()
	suite.mockAccountRepo.On("ListAccountsForUpdate", ctx, suite.tx).Return(suite.accounts, nil).Once()
	suite.mockTxnRepo.On("ListFiscalYearTransactionsInTx", ctx, suite.tx, mock.AnythingOfType("string")).Return([]domain.Transaction{}, nil).Once()
	suite.mockAccountRepo.On("SetAccountBalancesInTx", ctx, suite.tx, amountsEqual(map[string]int64{cashAccountID: 10000}), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	fy, err := suite.newService().CreateFiscalYear(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(fy.IsCurrent)
	suite.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), fy.StartDate)
}

func (suite *FiscalYearServiceTestSuite) TestCreateFiscalYear_LaterYearIsNotCurrent() {
	ctx := context.Background()
	req := dto.CreateFiscalYearRequest{
		Name:                 "2026年度",
		StartDate:            "2026-04-01",
		EndDate:              "2027-03-31",
		UseCurrentBalance:    true,
		CategorySource:       domain.CategorySourceCopy,
		CopyFromFiscalYearID: strPtr("fy-2025"),
	}

	suite.mockFYRepo.On("FindFiscalYearByID", ctx, "fy-2025").Return(&domain.FiscalYear{FiscalYearID: "fy-2025"}, nil).Once()
	suite.mockAccountRepo.On("ListAccounts", ctx).Return(suite.accounts, nil).Once()
	expectCommit(&suite.mockFYRepo.Mock, suite.tx)
	suite.mockFYRepo.On("HasCurrentFiscalYearInTx", ctx, suite.tx).Return(true, nil).Once()
	suite.mockFYRepo.On("SaveFiscalYearInTx", ctx, suite.tx, mock.MatchedBy(func(fy domain.FiscalYear) bool {
		return !fy.IsCurrent && fy.StartingBalanceCash.Equal(decimal.NewFromInt(500)) && fy.StartingBalanceBank.Equal(decimal.NewFromInt(3000))
	})).Return(nil).Once()
	suite.mockCategoryRepo.On("CopyCategoriesInTx", ctx, suite.tx, "fy-2025", mock.AnythingOfType("string"), suite.userID, mock.AnythingOfType("time.Time")).Return(int64(13), nil).Once()

	fy, err := suite.newService().CreateFiscalYear(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.False(fy.IsCurrent)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SetAccountBalancesInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FiscalYearServiceTestSuite) TestCreateFiscalYear_Invalid() {
	ctx := context.Background()
	svc := suite.newService()

	_, err := svc.CreateFiscalYear(ctx, dto.CreateFiscalYearRequest{Name: "x", StartDate: "2026-04-01", EndDate: "2025-03-31"}, suite.userID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = svc.CreateFiscalYear(ctx, dto.CreateFiscalYearRequest{Name: "  ", StartDate: "2025-04-01", EndDate: "2026-03-31"}, suite.userID)
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockFYRepo.On("FindFiscalYearByID", ctx, "fy-gone").Return(nil, apperrors.ErrNotFound).Once()
	_, err = svc.CreateFiscalYear(ctx, dto.CreateFiscalYearRequest{
		Name:           "x", StartDate: "2025-04-01", EndDate: "2026-03-31",
		CategorySource: domain.CategorySourceCopy, CopyFromFiscalYearID: strPtr("fy-gone"),
	}, suite.userID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *FiscalYearServiceTestSuite) TestCreateFiscalYear_StartingBalanceBeyondCents() {
	_, err := suite.newService().CreateFiscalYear(context.Background(), dto.CreateFiscalYearRequest{
		Name:                "2025年度",
		StartDate:           "2025-04-01",
		EndDate:             "2026-03-31",
		StartingBalanceCash: decimal.RequireFromString("100.125"),
	}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "startingBalanceCash")
}

func (suite *FiscalYearServiceTestSuite) TestSetCurrentFiscalYear_RebasesBalances() {
	ctx := context.Background()
	target := domain.FiscalYear{
		FiscalYearID:        "fy-2024",
		StartingBalanceCash: decimal.NewFromInt(2000),
		StartingBalanceBank: decimal.NewFromInt(3000),
	}
	txns := []domain.Transaction{
		{Type: domain.Income, Amount: decimal.NewFromInt(1500), AccountID: strPtr(cashAccountID)},
		{Type: domain.Expense, Amount: decimal.NewFromInt(700), AccountID: strPtr(cashAccountID), IsDeleted: true},
	}

	expectCommit(&suite.mockFYRepo.Mock, suite.tx)
	suite.mockFYRepo.On("FindFiscalYearByIDForUpdate", ctx, suite.tx, target.FiscalYearID).Return(&target, nil).Once()
	suite.mockFYRepo.On("SetCurrentFiscalYearInTx", ctx, suite.tx, target.FiscalYearID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountRepo.On("ListAccountsForUpdate", ctx, suite.tx).Return(suite.accounts, nil).Once()
	suite.mockTxnRepo.On("ListFiscalYearTransactionsInTx", ctx, suite.tx, target.FiscalYearID).Return(txns, nil).Once()
	suite.mockAccountRepo.On("SetAccountBalancesInTx", ctx, suite.tx, amountsEqual(map[string]int64{cashAccountID: 3500}), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	fy, err := suite.newService().SetCurrentFiscalYear(ctx, target.FiscalYearID, suite.userID)

	suite.Require().NoError(err)
	suite.True(fy.IsCurrent)
}

func (suite *FiscalYearServiceTestSuite) TestUpdateFiscalYear_StartingBalanceOfCurrentYear() {
	ctx := context.Background()
	current := domain.FiscalYear{
		FiscalYearID:        "fy-2025",
		Name:                "2025年度",
		StartDate:           time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:             time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		StartingBalanceCash: decimal.NewFromInt(500),
		StartingBalanceBank: decimal.NewFromInt(3000),
		IsCurrent:           true,
	}
	newCash := decimal.NewFromInt(900)

	expectCommit(&suite.mockFYRepo.Mock, suite.tx)
	suite.mockFYRepo.On("FindFiscalYearByIDForUpdate", ctx, suite.tx, current.FiscalYearID).Return(&current, nil).Once()
	suite.mockFYRepo.On("UpdateFiscalYearInTx", ctx, suite.tx, mock.MatchedBy(func(fy domain.FiscalYear) bool {
		return fy.StartingBalanceCash.Equal(newCash) && fy.LastUpdatedBy == suite.userID
	})).Return(nil).Once()
	suite.mockAccountRepo.On("ListAccountsForUpdate", ctx, suite.tx).Return(suite.accounts, nil).Once()
	suite.mockTxnRepo.On("ListFiscalYearTransactionsInTx", ctx, suite.tx, current.FiscalYearID).Return([]domain.Transaction{}, nil).Once()
	suite.mockAccountRepo.On("SetAccountBalancesInTx", ctx, suite.tx, amountsEqual(map[string]int64{cashAccountID: 900}), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	fy, err := suite.newService().UpdateFiscalYear(ctx, current.FiscalYearID, dto.UpdateFiscalYearRequest{StartingBalanceCash: &newCash}, suite.userID)

	suite.Require().NoError(err)
	suite.True(newCash.Equal(fy.StartingBalanceCash))
}

func (suite *FiscalYearServiceTestSuite) TestUpdateFiscalYear_RangeInverted() {
	ctx := context.Background()
	fy := domain.FiscalYear{
		FiscalYearID: "fy-2025",
		StartDate:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	expectRollback(&suite.mockFYRepo.Mock, suite.tx)
	suite.mockFYRepo.On("FindFiscalYearByIDForUpdate", ctx, suite.tx, fy.FiscalYearID).Return(&fy, nil).Once()

	_, err := suite.newService().UpdateFiscalYear(ctx, fy.FiscalYearID, dto.UpdateFiscalYearRequest{EndDate: strPtr("2025-01-01")}, suite.userID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *FiscalYearServiceTestSuite) TestDeleteFiscalYearDirect_DisabledByDefault() {
	_, err := suite.newService().DeleteFiscalYearDirect(context.Background(), "fy-2024", "山田", suite.userID)

	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockFYRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *FiscalYearServiceTestSuite) TestDeleteFiscalYearDirect_LastYear() {
	ctx := context.Background()
	result := &domain.DeletionResult{FiscalYearID: "fy-2024", FiscalYearName: "2024年度", TransactionCount: 3, WasCurrent: true}

	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(&domain.User{UserID: suite.userID, DisplayName: "山田"}, nil).Once()
	expectCommit(&suite.mockFYRepo.Mock, suite.tx)
	suite.mockFYRepo.On("DeleteFiscalYearCascadeInTx", ctx, suite.tx, "fy-2024").Return(result, []string{}, nil).Once()
	suite.mockFYRepo.On("PromoteLatestFiscalYearInTx", ctx, suite.tx, suite.userID, mock.AnythingOfType("time.Time")).Return(nil, nil).Once()
	suite.mockSystemRepo.On("SaveSystemHistoryInTx", ctx, suite.tx, systemAction(domain.SystemFiscalYearDeleted)).Return(nil).Once()

	got, err := suite.newService(services.WithDirectFiscalYearDelete(true)).DeleteFiscalYearDirect(ctx, "fy-2024", "山田", suite.userID)

	suite.Require().NoError(err)
	suite.Nil(got.NewCurrentYearID)
	suite.Equal(int64(3), got.TransactionCount)
	suite.mockBlobStore.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
}

func (suite *FiscalYearServiceTestSuite) TestDeleteFiscalYearDirect_WrongConfirmation() {
	ctx := context.Background()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(&domain.User{UserID: suite.userID, DisplayName: "山田"}, nil).Once()

	_, err := suite.newService(services.WithDirectFiscalYearDelete(true)).DeleteFiscalYearDirect(ctx, "fy-2024", "yamada", suite.userID)
	suite.ErrorIs(err, apperrors.ErrConfirmation)
}

func (suite *FiscalYearServiceTestSuite) TestGetFiscalYearSummary() {
	ctx := context.Background()
	fy := domain.FiscalYear{FiscalYearID: "fy-2025", StartingBalanceCash: decimal.NewFromInt(10000), StartingBalanceBank: decimal.NewFromInt(3000)}
	txns := []domain.Transaction{
		{Type: domain.Income, Amount: decimal.NewFromInt(5000), AccountID: strPtr(cashAccountID)},
		{Type: domain.Transfer, Amount: decimal.NewFromInt(2000), FromAccountID: strPtr(cashAccountID), ToAccountID: strPtr(bankAccountID)},
	}

	suite.mockFYRepo.On("FindFiscalYearByID", ctx, fy.FiscalYearID).Return(&fy, nil).Once()
	suite.mockAccountRepo.On("ListAccounts", ctx).Return(suite.accounts, nil).Once()
	suite.mockTxnRepo.On("ListFiscalYearTransactions", ctx, fy.FiscalYearID).Return(txns, nil).Once()

	summary, err := suite.newService().GetFiscalYearSummary(ctx, fy.FiscalYearID)

	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(13000).Equal(summary.Balances[0].Current))
	suite.True(decimal.NewFromInt(5000).Equal(summary.Balances[1].Current))
	suite.True(decimal.NewFromInt(18000).Equal(summary.EndingTotal))
}
