package pgsql

import (
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:       newPgxAccountRepository(dbPool),
		FiscalYearRepo:    newPgxFiscalYearRepository(dbPool),
		CategoryRepo:      newPgxCategoryRepository(dbPool),
		TransactionRepo:   newPgxTransactionRepository(dbPool),
		HistoryRepo:       newPgxHistoryRepository(dbPool),
		SystemHistoryRepo: newPgxSystemHistoryRepository(dbPool),
		ProposalRepo:      newPgxProposalRepository(dbPool),
		UserRepo:          newPgxUserRepository(dbPool),
		IdentityRepo:      newPgxIdentityRepository(dbPool),
		InviteCodeRepo:    newPgxInviteCodeRepository(dbPool),
		MaintenanceRepo:   newPgxMaintenanceRepository(dbPool),
	}
}
