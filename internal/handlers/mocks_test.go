package handlers_test

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) ReconcileBalances(ctx context.Context, userID string) (*domain.ReconcileResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconcileResult), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock FiscalYearService ---
type MockFiscalYearService struct {
	mock.Mock
}

func (m *MockFiscalYearService) GetFiscalYear(ctx context.Context, fiscalYearID string) (*domain.FiscalYear, error) {
	args := m.Called(ctx, fiscalYearID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalYearService) GetCurrentFiscalYear(ctx context.Context) (*domain.FiscalYear, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalYearService) ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalYearService) GetFiscalYearSummary(ctx context.Context, fiscalYearID string) (*domain.FiscalYearSummary, error) {
	args := m.Called(ctx, fiscalYearID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYearSummary), args.Error(1)
}

func (m *MockFiscalYearService) CreateFiscalYear(ctx context.Context, req dto.CreateFiscalYearRequest, userID string) (*domain.FiscalYear, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalYearService) UpdateFiscalYear(ctx context.Context, fiscalYearID string, req dto.UpdateFiscalYearRequest, userID string) (*domain.FiscalYear, error) {
	args := m.Called(ctx, fiscalYearID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalYearService) SetCurrentFiscalYear(ctx context.Context, fiscalYearID string, userID string) (*domain.FiscalYear, error) {
	args := m.Called(ctx, fiscalYearID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalYearService) DeleteFiscalYearDirect(ctx context.Context, fiscalYearID string, confirmName string, userID string) (*domain.DeletionResult, error) {
	args := m.Called(ctx, fiscalYearID, confirmName, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeletionResult), args.Error(1)
}

var _ portssvc.FiscalYearSvcFacade = (*MockFiscalYearService)(nil)

// --- Mock CategoryService ---
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) ListCategories(ctx context.Context, fiscalYearID string, categoryType *domain.CategoryType) ([]domain.Category, error) {
	args := m.Called(ctx, fiscalYearID, categoryType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, fiscalYearID string, req dto.CreateCategoryRequest, userID string) (*domain.Category, error) {
	args := m.Called(ctx, fiscalYearID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryService) RenameCategory(ctx context.Context, fiscalYearID string, categoryID string, req dto.RenameCategoryRequest, userID string) (*domain.Category, error) {
	args := m.Called(ctx, fiscalYearID, categoryID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, fiscalYearID string, categoryID string) error {
	args := m.Called(ctx, fiscalYearID, categoryID)
	return args.Error(0)
}

var _ portssvc.CategorySvcFacade = (*MockCategoryService)(nil)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*domain.TransactionPage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionPage), args.Error(1)
}

func (m *MockTransactionService) ListTransactionHistory(ctx context.Context, transactionID string) ([]domain.TransactionHistory, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionHistory), args.Error(1)
}

func (m *MockTransactionService) ListFiscalYearHistory(ctx context.Context, fiscalYearID string, limit int) ([]domain.TransactionHistory, error) {
	args := m.Called(ctx, fiscalYearID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionHistory), args.Error(1)
}

func (m *MockTransactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) DeleteTransaction(ctx context.Context, transactionID string, confirmName string, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, confirmName, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) RestoreTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock ProposalService ---
type MockProposalService struct {
	mock.Mock
}

func (m *MockProposalService) ListProposals(ctx context.Context, fiscalYearID *string) ([]domain.DeletionProposal, error) {
	args := m.Called(ctx, fiscalYearID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DeletionProposal), args.Error(1)
}

func (m *MockProposalService) GetProposal(ctx context.Context, proposalID string, userID string) (*domain.ProposalDetail, error) {
	args := m.Called(ctx, proposalID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProposalDetail), args.Error(1)
}

func (m *MockProposalService) ProposeDeletion(ctx context.Context, fiscalYearID string, userID string) (*domain.DeletionProposal, error) {
	args := m.Called(ctx, fiscalYearID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeletionProposal), args.Error(1)
}

func (m *MockProposalService) CastVote(ctx context.Context, proposalID string, choice domain.VoteChoice, userID string) (*domain.DeletionProposal, error) {
	args := m.Called(ctx, proposalID, choice, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeletionProposal), args.Error(1)
}

func (m *MockProposalService) CancelApproval(ctx context.Context, proposalID string, userID string) (*domain.DeletionProposal, error) {
	args := m.Called(ctx, proposalID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeletionProposal), args.Error(1)
}

func (m *MockProposalService) ExecuteProposal(ctx context.Context, proposalID string, userID string) (*domain.DeletionProposal, *domain.DeletionResult, error) {
	args := m.Called(ctx, proposalID, userID)
	var p *domain.DeletionProposal
	if v := args.Get(0); v != nil {
		p = v.(*domain.DeletionProposal)
	}
	var r *domain.DeletionResult
	if v := args.Get(1); v != nil {
		r = v.(*domain.DeletionResult)
	}
	return p, r, args.Error(2)
}

func (m *MockProposalService) RecalculateProposals(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ portssvc.ProposalSvcFacade = (*MockProposalService)(nil)

// --- Mock MemberService ---
type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) GetMember(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockMemberService) ListMembers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockMemberService) DeleteMember(ctx context.Context, targetUserID string, actorUserID string) error {
	args := m.Called(ctx, targetUserID, actorUserID)
	return args.Error(0)
}

var _ portssvc.MemberSvcFacade = (*MockMemberService)(nil)

// --- Mock InviteCodeService ---
type MockInviteCodeService struct {
	mock.Mock
}

func (m *MockInviteCodeService) CreateInviteCode(ctx context.Context, userID string) (*domain.InviteCode, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InviteCode), args.Error(1)
}

func (m *MockInviteCodeService) ListInviteCodes(ctx context.Context) ([]domain.InviteCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InviteCode), args.Error(1)
}

func (m *MockInviteCodeService) DeleteInviteCode(ctx context.Context, inviteCodeID string) error {
	args := m.Called(ctx, inviteCodeID)
	return args.Error(0)
}

func (m *MockInviteCodeService) MarkUsedByEmail(ctx context.Context, inviteCodeID string, email string) error {
	args := m.Called(ctx, inviteCodeID, email)
	return args.Error(0)
}

var _ portssvc.InviteCodeSvcFacade = (*MockInviteCodeService)(nil)

// --- Mock StorageService ---
type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) GetStorageUsage(ctx context.Context) (*domain.StorageUsage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StorageUsage), args.Error(1)
}

var _ portssvc.StorageSvcFacade = (*MockStorageService)(nil)

// --- Mock IdentityService ---
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) SignUp(ctx context.Context, req dto.SignUpRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockIdentityService) SignIn(ctx context.Context, email string, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockIdentityService) SignInWithEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockIdentityService) DeleteIdentity(ctx context.Context, authUserID string) error {
	args := m.Called(ctx, authUserID)
	return args.Error(0)
}

var _ portssvc.IdentitySvcFacade = (*MockIdentityService)(nil)

// --- Mock TokenService ---
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

var _ portssvc.TokenSvcFacade = (*MockTokenService)(nil)

// --- Mock GoogleOAuthService ---
type MockGoogleOAuthService struct {
	mock.Mock
}

func (m *MockGoogleOAuthService) GenerateStateString(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGoogleOAuthService) GetGoogleLoginURL(ctx context.Context, state string) string {
	args := m.Called(ctx, state)
	return args.String(0)
}

func (m *MockGoogleOAuthService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

func (m *MockGoogleOAuthService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	args := m.Called(ctx, idTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idtoken.Payload), args.Error(1)
}

var _ portssvc.GoogleOAuthHandlerSvcFacade = (*MockGoogleOAuthService)(nil)

// --- Mock ReceiptService ---
type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) UploadReceipt(ctx context.Context, filename string, r io.Reader, userID string) (*domain.Receipt, error) {
	args := m.Called(ctx, filename, r, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

var _ portssvc.ReceiptSvcFacade = (*MockReceiptService)(nil)

// --- Mock SystemHistoryService ---
type MockSystemHistoryService struct {
	mock.Mock
}

func (m *MockSystemHistoryService) ListSystemHistory(ctx context.Context, limit int) ([]domain.SystemHistory, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SystemHistory), args.Error(1)
}

var _ portssvc.SystemHistorySvcFacade = (*MockSystemHistoryService)(nil)
