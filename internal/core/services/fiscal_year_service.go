package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/SscSPs/club_ledger/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type fiscalYearService struct {
	BaseService
	fiscalYearRepo    portsrepo.FiscalYearRepositoryWithTx
	categoryRepo      portsrepo.CategoryTransactionSupport
	accountRepo       portsrepo.AccountReader
	transactionRepo   portsrepo.TransactionReader
	userRepo          portsrepo.UserReader
	systemHistoryRepo portsrepo.SystemHistoryRepositoryFacade
	balances          *balanceKeeper
	cascade           *fiscalYearCascade
	allowDirectDelete bool
}

// FiscalYearServiceOption configures the fiscal year service.
type FiscalYearServiceOption func(*fiscalYearService)

// WithDirectFiscalYearDelete enables the deletion path that bypasses the member vote.
func WithDirectFiscalYearDelete(enabled bool) FiscalYearServiceOption {
	return func(s *fiscalYearService) {
		s.allowDirectDelete = enabled
	}
}

// NewFiscalYearService creates the fiscal year service.
func NewFiscalYearService(
	fiscalYearRepo portsrepo.FiscalYearRepositoryWithTx,
	categoryRepo portsrepo.CategoryTransactionSupport,
	accountRepo portsrepo.AccountRepositoryFacade,
	transactionRepo portsrepo.TransactionRepositoryFacade,
	userRepo portsrepo.UserReader,
	systemHistoryRepo portsrepo.SystemHistoryRepositoryFacade,
	blobStore portsrepo.BlobStore,
	options ...FiscalYearServiceOption,
) portssvc.FiscalYearSvcFacade {
	balances := newBalanceKeeper(accountRepo, transactionRepo)
	svc := &fiscalYearService{
		fiscalYearRepo:    fiscalYearRepo,
		categoryRepo:      categoryRepo,
		accountRepo:       accountRepo,
		transactionRepo:   transactionRepo,
		userRepo:          userRepo,
		systemHistoryRepo: systemHistoryRepo,
		balances:          balances,
		cascade:           newFiscalYearCascade(fiscalYearRepo, blobStore, balances),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.FiscalYearSvcFacade = (*fiscalYearService)(nil)

func (s *fiscalYearService) GetFiscalYear(ctx context.Context, fiscalYearID string) (*domain.FiscalYear, error) {
	fy, err := s.fiscalYearRepo.FindFiscalYearByID(ctx, fiscalYearID)
	if err != nil {
		s.LogError(ctx, err, "Failed to get fiscal year", slog.String("fiscal_year_id", fiscalYearID))
		return nil, err
	}
	return fy, nil
}

func (s *fiscalYearService) GetCurrentFiscalYear(ctx context.Context) (*domain.FiscalYear, error) {
	return resolveCurrentFiscalYear(ctx, s.fiscalYearRepo)
}

func (s *fiscalYearService) ListFiscalYears(ctx context.Context) ([]domain.FiscalYear, error) {
	years, err := s.fiscalYearRepo.ListFiscalYears(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list fiscal years")
		return nil, err
	}
	return years, nil
}

func (s *fiscalYearService) GetFiscalYearSummary(ctx context.Context, fiscalYearID string) (*domain.FiscalYearSummary, error) {
	fy, err := s.fiscalYearRepo.FindFiscalYearByID(ctx, fiscalYearID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	txns, err := s.transactionRepo.ListFiscalYearTransactions(ctx, fiscalYearID)
	if err != nil {
		return nil, err
	}

	summary := accounting.Summarize(*fy, accounts, txns)
	return &summary, nil
}

func (s *fiscalYearService) CreateFiscalYear(ctx context.Context, req dto.CreateFiscalYearRequest, userID string) (*domain.FiscalYear, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	start, end, err := parseFiscalYearRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	source := req.CategorySource
	if source == "" {
		source = domain.CategorySourceNone
	}
	if source == domain.CategorySourceCopy {
		if req.CopyFromFiscalYearID == nil || *req.CopyFromFiscalYearID == "" {
			return nil, fmt.Errorf("%w: copyFromFiscalYearID is required when copying categories", apperrors.ErrValidation)
		}
		if _, err := s.fiscalYearRepo.FindFiscalYearByID(ctx, *req.CopyFromFiscalYearID); err != nil {
			return nil, notFoundAs(err, apperrors.ErrValidation, "source fiscal year %s does not exist", *req.CopyFromFiscalYearID)
		}
	}

	cash, bank := req.StartingBalanceCash, req.StartingBalanceBank
	if req.UseCurrentBalance {
		if cash, bank, err = s.persistedBalances(ctx); err != nil {
			return nil, err
		}
	} else if err := validateStartingBalances(&cash, &bank); err != nil {
		return nil, err
	}

	now := domain.Now()
	fy := domain.FiscalYear{
		FiscalYearID:        uuid.NewString(),
		Name:                name,
		StartDate:           start,
		EndDate:             end,
		StartingBalanceCash: cash,
		StartingBalanceBank: bank,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	err = withTx(ctx, s.fiscalYearRepo, func(tx pgx.Tx) error {
		hasCurrent, err := s.fiscalYearRepo.HasCurrentFiscalYearInTx(ctx, tx)
		if err != nil {
			return err
		}
		fy.IsCurrent = !hasCurrent

		if err := s.fiscalYearRepo.SaveFiscalYearInTx(ctx, tx, fy); err != nil {
			return err
		}

		switch source {
		case domain.CategorySourceDefault:
			categories := domain.DefaultCategories(fy.FiscalYearID)
			for i := range categories {
				categories[i].CategoryID = uuid.NewString()
				categories[i].AuditFields = fy.AuditFields
			}
			if err := s.categoryRepo.SaveCategoriesInTx(ctx, tx, categories); err != nil {
				return err
			}
		case domain.CategorySourceCopy:
			copied, err := s.categoryRepo.CopyCategoriesInTx(ctx, tx, *req.CopyFromFiscalYearID, fy.FiscalYearID, userID, now)
			if err != nil {
				return err
			}
			s.LogDebug(ctx, "Copied categories", slog.Int64("count", copied))
		}

		if fy.IsCurrent {
			_, err := s.balances.rebaseInTx(ctx, tx, fy, userID, now)
			return err
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create fiscal year", slog.String("name", name))
		return nil, err
	}

	s.LogInfo(ctx, "Fiscal year created",
		slog.String("fiscal_year_id", fy.FiscalYearID),
		slog.Bool("is_current", fy.IsCurrent),
		slog.String("category_source", string(source)))
	return &fy, nil
}

func (s *fiscalYearService) UpdateFiscalYear(ctx context.Context, fiscalYearID string, req dto.UpdateFiscalYearRequest, userID string) (*domain.FiscalYear, error) {
	var updated *domain.FiscalYear
	err := withTx(ctx, s.fiscalYearRepo, func(tx pgx.Tx) error {
		fy, err := s.fiscalYearRepo.FindFiscalYearByIDForUpdate(ctx, tx, fiscalYearID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return fmt.Errorf("%w: name must not be blank", apperrors.ErrValidation)
			}
			fy.Name = name
		}
		startStr, endStr := fy.StartDate.Format(dto.DateLayout), fy.EndDate.Format(dto.DateLayout)
		if req.StartDate != nil {
			startStr = *req.StartDate
		}
		if req.EndDate != nil {
			endStr = *req.EndDate
		}
		if fy.StartDate, fy.EndDate, err = parseFiscalYearRange(startStr, endStr); err != nil {
			return err
		}

		if err := validateStartingBalances(req.StartingBalanceCash, req.StartingBalanceBank); err != nil {
			return err
		}
		balancesChanged := false
		if req.StartingBalanceCash != nil && !req.StartingBalanceCash.Equal(fy.StartingBalanceCash) {
			fy.StartingBalanceCash = *req.StartingBalanceCash
			balancesChanged = true
		}
		if req.StartingBalanceBank != nil && !req.StartingBalanceBank.Equal(fy.StartingBalanceBank) {
			fy.StartingBalanceBank = *req.StartingBalanceBank
			balancesChanged = true
		}

		now := domain.Now()
		fy.LastUpdatedAt = now
		fy.LastUpdatedBy = userID
		if err := s.fiscalYearRepo.UpdateFiscalYearInTx(ctx, tx, *fy); err != nil {
			return err
		}

		if fy.IsCurrent && balancesChanged {
			if _, err := s.balances.rebaseInTx(ctx, tx, *fy, userID, now); err != nil {
				return err
			}
		}
		updated = fy
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update fiscal year", slog.String("fiscal_year_id", fiscalYearID))
		return nil, err
	}
	return updated, nil
}

func (s *fiscalYearService) SetCurrentFiscalYear(ctx context.Context, fiscalYearID string, userID string) (*domain.FiscalYear, error) {
	var target *domain.FiscalYear
	err := withTx(ctx, s.fiscalYearRepo, func(tx pgx.Tx) error {
		fy, err := s.fiscalYearRepo.FindFiscalYearByIDForUpdate(ctx, tx, fiscalYearID)
		if err != nil {
			return err
		}

		now := domain.Now()
		if err := s.fiscalYearRepo.SetCurrentFiscalYearInTx(ctx, tx, fiscalYearID, userID, now); err != nil {
			return err
		}
		fy.IsCurrent = true
		fy.LastUpdatedAt = now
		fy.LastUpdatedBy = userID

		if _, err := s.balances.rebaseInTx(ctx, tx, *fy, userID, now); err != nil {
			return err
		}
		target = fy
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to set current fiscal year", slog.String("fiscal_year_id", fiscalYearID))
		return nil, err
	}

	s.LogInfo(ctx, "Current fiscal year changed", slog.String("fiscal_year_id", fiscalYearID))
	return target, nil
}

func (s *fiscalYearService) DeleteFiscalYearDirect(ctx context.Context, fiscalYearID string, confirmName string, userID string) (*domain.DeletionResult, error) {
	if !s.allowDirectDelete {
		return nil, fmt.Errorf("%w: direct fiscal year deletion is disabled, use a deletion proposal", apperrors.ErrForbidden)
	}
	if err := confirmDisplayName(ctx, s.userRepo, userID, confirmName); err != nil {
		return nil, err
	}

	now := domain.Now()
	var result *domain.DeletionResult
	err := withTx(ctx, s.fiscalYearRepo, func(tx pgx.Tx) error {
		var err error
		if result, err = s.cascade.deleteInTx(ctx, tx, fiscalYearID, userID, now); err != nil {
			return err
		}
		return recordSystemEvent(ctx, tx, s.systemHistoryRepo, domain.SystemFiscalYearDeleted, userID, now, deletionDetails(result))
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete fiscal year", slog.String("fiscal_year_id", fiscalYearID))
		return nil, err
	}

	s.LogInfo(ctx, "Fiscal year deleted directly",
		slog.String("fiscal_year_id", fiscalYearID),
		slog.Int64("transactions", result.TransactionCount))
	return result, s.cascade.removeReceipts(ctx, result)
}

// persistedBalances returns the cash and bank balances currently stored on the accounts.
func (s *fiscalYearService) persistedBalances(ctx context.Context) (cash, bank decimal.Decimal, err error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	for _, acc := range accounts {
		switch acc.Kind {
		case domain.AccountKindCash:
			cash = acc.Balance
		case domain.AccountKindBank:
			bank = acc.Balance
		}
	}
	return cash, bank, nil
}

func validateStartingBalances(cash, bank *decimal.Decimal) error {
	if cash != nil {
		if err := domain.ValidateMoney("startingBalanceCash", *cash); err != nil {
			return err
		}
	}
	if bank != nil {
		return domain.ValidateMoney("startingBalanceBank", *bank)
	}
	return nil
}

func parseFiscalYearRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := dto.ParseLedgerDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: startDate: %v", apperrors.ErrValidation, err)
	}
	end, err := dto.ParseLedgerDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: endDate: %v", apperrors.ErrValidation, err)
	}
	start, end = domain.DateOf(start), domain.DateOf(end)
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: startDate must not be after endDate", apperrors.ErrValidation)
	}
	return start, end, nil
}

// confirmDisplayName checks confirmName verbatim against the actor's stored display name.
func confirmDisplayName(ctx context.Context, userRepo portsrepo.UserReader, userID, confirmName string) error {
	user, err := userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return notFoundAs(err, apperrors.ErrUnauthorized, "no profile for user %s", userID)
	}
	if confirmName != user.DisplayName {
		return fmt.Errorf("%w: confirmation name does not match your display name", apperrors.ErrConfirmation)
	}
	return nil
}
