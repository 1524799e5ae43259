package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Account            AccountSvcFacade
	FiscalYear         FiscalYearSvcFacade
	Category           CategorySvcFacade
	Transaction        TransactionSvcFacade
	Proposal           ProposalSvcFacade
	Member             MemberSvcFacade
	InviteCode         InviteCodeSvcFacade
	Storage            StorageSvcFacade
	Identity           IdentitySvcFacade
	TokenService       TokenSvcFacade
	GoogleOAuthHandler GoogleOAuthHandlerSvcFacade
	Receipt            ReceiptSvcFacade
	SystemHistory      SystemHistorySvcFacade
}
