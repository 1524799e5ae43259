package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo       portsrepo.AccountRepositoryWithTx
	fiscalYearRepo    portsrepo.FiscalYearReader
	systemHistoryRepo portsrepo.SystemHistoryRepositoryFacade
	balances          *balanceKeeper
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountSystemHistory records reconciliations in the club-wide audit log.
func WithAccountSystemHistory(repo portsrepo.SystemHistoryRepositoryFacade) AccountServiceOption {
	return func(s *accountService) {
		s.systemHistoryRepo = repo
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(accountRepo portsrepo.AccountRepositoryWithTx, fiscalYearRepo portsrepo.FiscalYearReader, transactionRepo portsrepo.TransactionTransactionSupport, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo:    accountRepo,
		fiscalYearRepo: fiscalYearRepo,
		balances:       newBalanceKeeper(accountRepo, transactionRepo),
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

// ReconcileBalances only looks at the flagged year; the persisted balance never follows the fallback year.
func (s *accountService) ReconcileBalances(ctx context.Context, userID string) (*domain.ReconcileResult, error) {
	fy, err := s.fiscalYearRepo.FindCurrentFiscalYear(ctx)
	if err != nil {
		s.LogError(ctx, err, "No current fiscal year to reconcile against")
		return nil, err
	}

	now := domain.Now()
	result := &domain.ReconcileResult{FiscalYearID: fy.FiscalYearID, Corrected: []domain.BalanceDrift{}}

	err = withTx(ctx, s.accountRepo, func(tx pgx.Tx) error {
		drifts, err := s.balances.rebaseInTx(ctx, tx, *fy, userID, now)
		if err != nil {
			return err
		}
		if len(drifts) == 0 {
			return nil
		}
		result.Corrected = drifts

		if s.systemHistoryRepo == nil {
			return nil
		}
		details := map[string]any{"fiscalYearID": fy.FiscalYearID, "fiscalYearName": fy.Name}
		for _, d := range drifts {
			details[string(d.Kind)+"Drift"] = d.Drift().String()
		}
		return recordSystemEvent(ctx, tx, s.systemHistoryRepo, domain.SystemBalancesReconciled, userID, now, details)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reconcile balances", slog.String("fiscal_year_id", fy.FiscalYearID))
		return nil, err
	}

	s.LogInfo(ctx, "Balances reconciled", slog.String("fiscal_year_id", fy.FiscalYearID), slog.Int("corrected", len(result.Corrected)))
	return result, nil
}
