package services

import (
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, blobStore portsrepo.BlobStore) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(
		repos.AccountRepo,
		repos.FiscalYearRepo,
		repos.TransactionRepo,
		WithAccountSystemHistory(repos.SystemHistoryRepo),
	)

	container.FiscalYear = NewFiscalYearService(
		repos.FiscalYearRepo,
		repos.CategoryRepo,
		repos.AccountRepo,
		repos.TransactionRepo,
		repos.UserRepo,
		repos.SystemHistoryRepo,
		blobStore,
		WithDirectFiscalYearDelete(cfg.AllowDirectFiscalYearDelete),
	)

	container.Category = NewCategoryService(repos.CategoryRepo, repos.FiscalYearRepo)

	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		repos.AccountRepo,
		repos.FiscalYearRepo,
		repos.HistoryRepo,
		repos.UserRepo,
	)

	container.Proposal = NewProposalService(
		repos.ProposalRepo,
		repos.FiscalYearRepo,
		repos.AccountRepo,
		repos.TransactionRepo,
		repos.UserRepo,
		repos.SystemHistoryRepo,
		repos.MaintenanceRepo,
		blobStore,
		WithProposalTTL(cfg.ProposalTTL),
	)

	container.Member = NewMemberService(
		repos.UserRepo,
		repos.IdentityRepo,
		repos.TransactionRepo,
		repos.InviteCodeRepo,
		repos.ProposalRepo,
		repos.SystemHistoryRepo,
	)

	container.InviteCode = NewInviteCodeService(repos.InviteCodeRepo, repos.UserRepo, cfg.InviteCodeTTL)
	container.Storage = NewStorageService(repos.TransactionRepo, repos.HistoryRepo, blobStore, cfg.DatabaseSizeLimitMB, cfg.StorageSizeLimitMB)
	container.Receipt = NewReceiptService(blobStore, cfg.ReceiptMaxBytes)
	container.SystemHistory = NewSystemHistoryService(repos.SystemHistoryRepo)

	// Sign-up spans identities, profiles and invite codes; any repository's transaction manager will do.
	container.Identity = NewIdentityService(repos.TransactionRepo, repos.IdentityRepo, repos.UserRepo, repos.InviteCodeRepo)
	container.TokenService = NewTokenService(cfg)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
