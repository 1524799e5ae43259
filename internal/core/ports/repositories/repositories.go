package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo       AccountRepositoryWithTx
	FiscalYearRepo    FiscalYearRepositoryWithTx
	CategoryRepo      CategoryRepositoryFacade
	TransactionRepo   TransactionRepositoryWithTx
	HistoryRepo       HistoryRepositoryFacade
	SystemHistoryRepo SystemHistoryRepositoryFacade
	ProposalRepo      ProposalRepositoryWithTx
	UserRepo          UserRepositoryFacade
	IdentityRepo      IdentityRepositoryFacade
	InviteCodeRepo    InviteCodeRepositoryFacade
	MaintenanceRepo   MaintenanceRepository
}
