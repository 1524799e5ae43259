package services_test

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// fakeTx stands in for a live transaction; services only pass it through to repositories.
type fakeTx struct{ pgx.Tx }

// mockTxManager records Begin/Commit/Rollback. Embedded by every repository mock that opens transactions.
type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *mockTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *mockTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

// expectCommit sets up a transaction that is expected to commit.
func expectCommit(m *mock.Mock, tx pgx.Tx) {
	m.On("Begin", mock.Anything).Return(tx, nil).Once()
	m.On("Commit", mock.Anything, tx).Return(nil).Once()
}

// expectRollback sets up a transaction that is expected to roll back.
func expectRollback(m *mock.Mock, tx pgx.Tx) {
	m.On("Begin", mock.Anything).Return(tx, nil).Once()
	m.On("Rollback", mock.Anything, tx).Return(nil).Once()
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mockTxManager
}

var _ portsrepo.AccountRepositoryWithTx = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsForUpdate(ctx context.Context, tx pgx.Tx) ([]domain.Account, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	return m.Called(ctx, tx, balanceChanges, userID, now).Error(0)
}

func (m *MockAccountRepository) SetAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balances map[string]decimal.Decimal, userID string, now time.Time) error {
	return m.Called(ctx, tx, balances, userID, now).Error(0)
}

// --- Mock FiscalYearRepository ---
type MockFiscalYearRepository struct {
	mockTxManager
}

var _ portsrepo.FiscalYearRepositoryWithTx = (*MockFiscalYearRepository)(nil)

func (m *MockFiscalYearRepository) findOne(args mock.Arguments) (*domain.FiscalYear, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalYearRepository) FindFiscalYearByID(ctx context.Context, fiscalYearID string) (*domain.FiscalYear, error) {
	return m.findOne(m.Called(ctx, fiscalYearID))
}

func (m *MockFiscalYearRepository) FindCurrentFiscalYear(ctx context.Context) (*domain.FiscalYear, error) {
	return m.findOne(m.Called(ctx))
}

func (m *MockFiscalYearRepository) ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalYearRepository) UpdateFiscalYear(ctx context.Context, fy domain.FiscalYear) error {
	return m.Called(ctx, fy).Error(0)
}

func (m *MockFiscalYearRepository) SaveFiscalYearInTx(ctx context.Context, tx pgx.Tx, fy domain.FiscalYear) error {
	return m.Called(ctx, tx, fy).Error(0)
}

func (m *MockFiscalYearRepository) UpdateFiscalYearInTx(ctx context.Context, tx pgx.Tx, fy domain.FiscalYear) error {
	return m.Called(ctx, tx, fy).Error(0)
}

func (m *MockFiscalYearRepository) FindFiscalYearByIDForUpdate(ctx context.Context, tx pgx.Tx, fiscalYearID string) (*domain.FiscalYear, error) {
	return m.findOne(m.Called(ctx, tx, fiscalYearID))
}

func (m *MockFiscalYearRepository) HasCurrentFiscalYearInTx(ctx context.Context, tx pgx.Tx) (bool, error) {
	args := m.Called(ctx, tx)
	return args.Bool(0), args.Error(1)
}

func (m *MockFiscalYearRepository) SetCurrentFiscalYearInTx(ctx context.Context, tx pgx.Tx, fiscalYearID string, userID string, now time.Time) error {
	return m.Called(ctx, tx, fiscalYearID, userID, now).Error(0)
}

func (m *MockFiscalYearRepository) DeleteFiscalYearCascadeInTx(ctx context.Context, tx pgx.Tx, fiscalYearID string) (*domain.DeletionResult, []string, error) {
	args := m.Called(ctx, tx, fiscalYearID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.DeletionResult), args.Get(1).([]string), args.Error(2)
}

func (m *MockFiscalYearRepository) PromoteLatestFiscalYearInTx(ctx context.Context, tx pgx.Tx, userID string, now time.Time) (*string, error) {
	args := m.Called(ctx, tx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

// --- Mock CategoryRepository ---
type MockCategoryRepository struct {
	mock.Mock
}

var _ portsrepo.CategoryRepositoryFacade = (*MockCategoryRepository)(nil)

func (m *MockCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context, fiscalYearID string, categoryType *domain.CategoryType) ([]domain.Category, error) {
	args := m.Called(ctx, fiscalYearID, categoryType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) RenameCategory(ctx context.Context, categoryID string, name string, userID string, now time.Time) error {
	return m.Called(ctx, categoryID, name, userID, now).Error(0)
}

func (m *MockCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	return m.Called(ctx, categoryID).Error(0)
}

func (m *MockCategoryRepository) SaveCategoriesInTx(ctx context.Context, tx pgx.Tx, categories []domain.Category) error {
	return m.Called(ctx, tx, categories).Error(0)
}

func (m *MockCategoryRepository) CopyCategoriesInTx(ctx context.Context, tx pgx.Tx, fromYearID, toYearID string, userID string, now time.Time) (int64, error) {
	args := m.Called(ctx, tx, fromYearID, toYearID, userID, now)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mockTxManager
}

var _ portsrepo.TransactionRepositoryWithTx = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) findOne(args mock.Arguments) (*domain.Transaction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) findMany(args mock.Arguments) ([]domain.Transaction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return m.findOne(m.Called(ctx, transactionID))
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	return m.findMany(m.Called(ctx, filter))
}

func (m *MockTransactionRepository) ListFiscalYearTransactions(ctx context.Context, fiscalYearID string) ([]domain.Transaction, error) {
	return m.findMany(m.Called(ctx, fiscalYearID))
}

func (m *MockTransactionRepository) CountTransactions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) CountTransactionsRecordedBy(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	return m.findOne(m.Called(ctx, tx, transactionID))
}

func (m *MockTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	return m.Called(ctx, tx, txn).Error(0)
}

func (m *MockTransactionRepository) UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	return m.Called(ctx, tx, txn).Error(0)
}

func (m *MockTransactionRepository) ListFiscalYearTransactionsInTx(ctx context.Context, tx pgx.Tx, fiscalYearID string) ([]domain.Transaction, error) {
	return m.findMany(m.Called(ctx, tx, fiscalYearID))
}

// --- Mock HistoryRepository ---
type MockHistoryRepository struct {
	mock.Mock
}

var _ portsrepo.HistoryRepositoryFacade = (*MockHistoryRepository)(nil)

func (m *MockHistoryRepository) ListHistoryByTransaction(ctx context.Context, transactionID string) ([]domain.TransactionHistory, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionHistory), args.Error(1)
}

func (m *MockHistoryRepository) ListHistoryByFiscalYear(ctx context.Context, fiscalYearID string, limit int) ([]domain.TransactionHistory, error) {
	args := m.Called(ctx, fiscalYearID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionHistory), args.Error(1)
}

func (m *MockHistoryRepository) CountHistory(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHistoryRepository) SaveHistoryInTx(ctx context.Context, tx pgx.Tx, history domain.TransactionHistory) error {
	return m.Called(ctx, tx, history).Error(0)
}

// --- Mock SystemHistoryRepository ---
type MockSystemHistoryRepository struct {
	mock.Mock
}

var _ portsrepo.SystemHistoryRepositoryFacade = (*MockSystemHistoryRepository)(nil)

func (m *MockSystemHistoryRepository) SaveSystemHistoryInTx(ctx context.Context, tx pgx.Tx, entry domain.SystemHistory) error {
	return m.Called(ctx, tx, entry).Error(0)
}

func (m *MockSystemHistoryRepository) ListSystemHistory(ctx context.Context, limit int) ([]domain.SystemHistory, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SystemHistory), args.Error(1)
}

// --- Mock ProposalRepository ---
type MockProposalRepository struct {
	mockTxManager
}

var _ portsrepo.ProposalRepositoryWithTx = (*MockProposalRepository)(nil)

func (m *MockProposalRepository) findOne(args mock.Arguments) (*domain.DeletionProposal, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeletionProposal), args.Error(1)
}

func (m *MockProposalRepository) findMany(args mock.Arguments) ([]domain.DeletionProposal, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DeletionProposal), args.Error(1)
}

func (m *MockProposalRepository) FindProposalByID(ctx context.Context, proposalID string) (*domain.DeletionProposal, error) {
	return m.findOne(m.Called(ctx, proposalID))
}

func (m *MockProposalRepository) ListProposals(ctx context.Context, fiscalYearID *string) ([]domain.DeletionProposal, error) {
	return m.findMany(m.Called(ctx, fiscalYearID))
}

func (m *MockProposalRepository) ListVotes(ctx context.Context, proposalID string) ([]domain.DeletionVote, error) {
	args := m.Called(ctx, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DeletionVote), args.Error(1)
}

func (m *MockProposalRepository) FindProposalByIDForUpdate(ctx context.Context, tx pgx.Tx, proposalID string) (*domain.DeletionProposal, error) {
	return m.findOne(m.Called(ctx, tx, proposalID))
}

func (m *MockProposalRepository) ListOpenProposalsForFiscalYearInTx(ctx context.Context, tx pgx.Tx, fiscalYearID string) ([]domain.DeletionProposal, error) {
	return m.findMany(m.Called(ctx, tx, fiscalYearID))
}

func (m *MockProposalRepository) ListPendingProposalsForUpdate(ctx context.Context, tx pgx.Tx, now time.Time) ([]domain.DeletionProposal, error) {
	return m.findMany(m.Called(ctx, tx, now))
}

func (m *MockProposalRepository) SaveProposalInTx(ctx context.Context, tx pgx.Tx, proposal domain.DeletionProposal) error {
	return m.Called(ctx, tx, proposal).Error(0)
}

func (m *MockProposalRepository) UpdateProposalInTx(ctx context.Context, tx pgx.Tx, proposal domain.DeletionProposal) error {
	return m.Called(ctx, tx, proposal).Error(0)
}

func (m *MockProposalRepository) UpsertVoteInTx(ctx context.Context, tx pgx.Tx, vote domain.DeletionVote) error {
	return m.Called(ctx, tx, vote).Error(0)
}

func (m *MockProposalRepository) CountVotesInTx(ctx context.Context, tx pgx.Tx, proposalID string) (int, int, error) {
	args := m.Called(ctx, tx, proposalID)
	return args.Int(0), args.Int(1), args.Error(2)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) findOne(args mock.Arguments) (*domain.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return m.findOne(m.Called(ctx, userID))
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.findOne(m.Called(ctx, email))
}

func (m *MockUserRepository) FindUserByAuthUserID(ctx context.Context, authUserID string) (*domain.User, error) {
	return m.findOne(m.Called(ctx, authUserID))
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) SaveUserInTx(ctx context.Context, tx pgx.Tx, user domain.User) error {
	return m.Called(ctx, tx, user).Error(0)
}

func (m *MockUserRepository) DeleteUserInTx(ctx context.Context, tx pgx.Tx, userID string) error {
	return m.Called(ctx, tx, userID).Error(0)
}

func (m *MockUserRepository) CountUsersInTx(ctx context.Context, tx pgx.Tx) (int, error) {
	args := m.Called(ctx, tx)
	return args.Int(0), args.Error(1)
}

// --- Mock IdentityRepository ---
type MockIdentityRepository struct {
	mock.Mock
}

var _ portsrepo.IdentityRepositoryFacade = (*MockIdentityRepository)(nil)

func (m *MockIdentityRepository) FindIdentityByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockIdentityRepository) FindIdentityByID(ctx context.Context, authUserID string) (*domain.Identity, error) {
	args := m.Called(ctx, authUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockIdentityRepository) SaveIdentityInTx(ctx context.Context, tx pgx.Tx, identity domain.Identity) error {
	return m.Called(ctx, tx, identity).Error(0)
}

func (m *MockIdentityRepository) DeleteIdentity(ctx context.Context, authUserID string) error {
	return m.Called(ctx, authUserID).Error(0)
}

func (m *MockIdentityRepository) DeleteIdentityInTx(ctx context.Context, tx pgx.Tx, authUserID string) error {
	return m.Called(ctx, tx, authUserID).Error(0)
}

// --- Mock InviteCodeRepository ---
type MockInviteCodeRepository struct {
	mock.Mock
}

var _ portsrepo.InviteCodeRepositoryFacade = (*MockInviteCodeRepository)(nil)

func (m *MockInviteCodeRepository) SaveInviteCode(ctx context.Context, code domain.InviteCode) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockInviteCodeRepository) FindInviteCodeByID(ctx context.Context, inviteCodeID string) (*domain.InviteCode, error) {
	args := m.Called(ctx, inviteCodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InviteCode), args.Error(1)
}

func (m *MockInviteCodeRepository) ListInviteCodes(ctx context.Context) ([]domain.InviteCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InviteCode), args.Error(1)
}

func (m *MockInviteCodeRepository) DeleteExpiredUnused(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInviteCodeRepository) DeleteInviteCode(ctx context.Context, inviteCodeID string) error {
	return m.Called(ctx, inviteCodeID).Error(0)
}

func (m *MockInviteCodeRepository) CountInviteCodesInvolving(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInviteCodeRepository) FindInviteCodeByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*domain.InviteCode, error) {
	args := m.Called(ctx, tx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InviteCode), args.Error(1)
}

func (m *MockInviteCodeRepository) MarkInviteCodeUsedInTx(ctx context.Context, tx pgx.Tx, inviteCodeID string, userID string, now time.Time) error {
	return m.Called(ctx, tx, inviteCodeID, userID, now).Error(0)
}

func (m *MockInviteCodeRepository) MarkInviteCodeUsed(ctx context.Context, inviteCodeID string, userID string, now time.Time) error {
	return m.Called(ctx, inviteCodeID, userID, now).Error(0)
}

// --- Mock MaintenanceRepository ---
type MockMaintenanceRepository struct {
	mock.Mock
}

func (m *MockMaintenanceRepository) RecalculateProposals(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// --- Mock BlobStore ---
type MockBlobStore struct {
	mock.Mock
}

var _ portsrepo.BlobStore = (*MockBlobStore)(nil)

func (m *MockBlobStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	args := m.Called(ctx, key, r)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, keys []string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockBlobStore) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBlobStore) KeyFromURL(url string) (string, bool) {
	args := m.Called(url)
	return args.String(0), args.Bool(1)
}

func strPtr(s string) *string { return &s }
