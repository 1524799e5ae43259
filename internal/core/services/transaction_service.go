package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/SscSPs/club_ledger/internal/utils/accounting"
	"github.com/SscSPs/club_ledger/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	defaultTransactionPageSize = 50
	defaultHistoryLimit        = 100
	monthLayout                = "2006-01"
)

// transactionService owns the ledger entry lifecycle. Each write locks the affected
// accounts in ID order, then writes the row, one history row and the balance change.
type transactionService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryWithTx
	fiscalYearRepo  portsrepo.FiscalYearRepositoryFacade
	historyRepo     portsrepo.HistoryRepositoryFacade
	userRepo        portsrepo.UserReader
	balances        *balanceKeeper
}

// NewTransactionService creates the ledger entry service.
func NewTransactionService(
	transactionRepo portsrepo.TransactionRepositoryWithTx,
	accountRepo portsrepo.AccountTransactionSupport,
	fiscalYearRepo portsrepo.FiscalYearRepositoryFacade,
	historyRepo portsrepo.HistoryRepositoryFacade,
	userRepo portsrepo.UserReader,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		transactionRepo: transactionRepo,
		fiscalYearRepo:  fiscalYearRepo,
		historyRepo:     historyRepo,
		userRepo:        userRepo,
		balances:        newBalanceKeeper(accountRepo, transactionRepo),
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.transactionRepo.FindTransactionByID(ctx, transactionID)
}

func (s *transactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*domain.TransactionPage, error) {
	fiscalYearID := params.FiscalYearID
	if fiscalYearID == "" {
		fy, err := resolveCurrentFiscalYear(ctx, s.fiscalYearRepo)
		if err != nil {
			return nil, err
		}
		fiscalYearID = fy.FiscalYearID
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultTransactionPageSize
	}

	filter := domain.TransactionFilter{
		FiscalYearID:   fiscalYearID,
		Type:           params.Type,
		AccountID:      params.AccountID,
		IncludeDeleted: params.IncludeDeleted,
		Limit:          limit + 1,
	}
	if params.Month != "" {
		monthStart, err := time.Parse(monthLayout, params.Month)
		if err != nil {
			return nil, fmt.Errorf("%w: month must be YYYY-MM", apperrors.ErrValidation)
		}
		monthEnd := monthStart.AddDate(0, 1, 0)
		filter.MonthStart, filter.MonthEnd = &monthStart, &monthEnd
	}
	cursor, err := pagination.DecodeOptional(params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if cursor != nil {
		filter.AfterRecorded, filter.AfterCreated = &cursor.RecordedAt, &cursor.CreatedAt
	}

	txns, err := s.transactionRepo.ListTransactions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("fiscal_year_id", fiscalYearID))
		return nil, err
	}

	page := &domain.TransactionPage{Transactions: txns}
	if len(txns) > limit {
		page.Transactions = txns[:limit]
		last := page.Transactions[limit-1]
		token := pagination.EncodeToken(last.RecordedAt, last.CreatedAt)
		page.NextToken = &token
	}
	return page, nil
}

func (s *transactionService) ListTransactionHistory(ctx context.Context, transactionID string) ([]domain.TransactionHistory, error) {
	if _, err := s.transactionRepo.FindTransactionByID(ctx, transactionID); err != nil {
		return nil, err
	}
	return s.historyRepo.ListHistoryByTransaction(ctx, transactionID)
}

func (s *transactionService) ListFiscalYearHistory(ctx context.Context, fiscalYearID string, limit int) ([]domain.TransactionHistory, error) {
	if _, err := s.fiscalYearRepo.FindFiscalYearByID(ctx, fiscalYearID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.historyRepo.ListHistoryByFiscalYear(ctx, fiscalYearID, limit)
}

func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	recordedAt, err := dto.ParseLedgerDate(req.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: recordedAt: %v", apperrors.ErrValidation, err)
	}

	now := domain.Now()
	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		Type:            req.Type,
		Amount:          req.Amount,
		Description:     req.Description,
		Category:        categoryFor(req.Type, req.Category),
		AccountID:       req.AccountID,
		FromAccountID:   req.FromAccountID,
		ToAccountID:     req.ToAccountID,
		RecordedBy:      userID,
		RecordedAt:      recordedAt,
		ReceiptImageURL: req.ReceiptImageURL,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	fiscalYearID := ""
	if req.FiscalYearID != nil && *req.FiscalYearID != "" {
		fiscalYearID = *req.FiscalYearID
	} else {
		current, err := resolveCurrentFiscalYear(ctx, s.fiscalYearRepo)
		if err != nil {
			return nil, err
		}
		fiscalYearID = current.FiscalYearID
	}

	err = withTx(ctx, s.transactionRepo, func(tx pgx.Tx) error {
		fy, err := s.lockContainingYear(ctx, tx, fiscalYearID, txn.RecordedAt)
		if err != nil {
			return err
		}
		txn.FiscalYearID = fy.FiscalYearID

		delta, err := accounting.Effects(txn)
		if err != nil {
			return err
		}
		if err := s.balances.applyInTx(ctx, tx, *fy, txn.AffectedAccountIDs(), delta, userID, now); err != nil {
			return err
		}
		if err := s.transactionRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
			return err
		}
		return s.writeHistory(ctx, tx, txn.TransactionID, domain.HistoryCreated, userID, now, nil, &txn)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create transaction", slog.String("type", string(txn.Type)))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("fiscal_year_id", txn.FiscalYearID),
		slog.String("amount", txn.Amount.String()))
	return &txn, nil
}

func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	recordedAt, err := dto.ParseLedgerDate(req.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: recordedAt: %v", apperrors.ErrValidation, err)
	}

	now := domain.Now()
	var after domain.Transaction
	err = withTx(ctx, s.transactionRepo, func(tx pgx.Tx) error {
		before, err := s.transactionRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if before.IsDeleted {
			return fmt.Errorf("%w: transaction %s is deleted, restore it before editing", apperrors.ErrConflict, transactionID)
		}
		if req.ExpectedLastUpdatedAt != nil && !domain.SameInstant(*req.ExpectedLastUpdatedAt, before.LastUpdatedAt) {
			return fmt.Errorf("%w: transaction %s was changed by someone else", apperrors.ErrConflict, transactionID)
		}

		after = *before
		after.Type = req.Type
		after.Amount = req.Amount
		after.Description = req.Description
		after.Category = categoryFor(req.Type, req.Category)
		after.AccountID = req.AccountID
		after.FromAccountID = req.FromAccountID
		after.ToAccountID = req.ToAccountID
		after.RecordedAt = recordedAt
		after.ReceiptImageURL = req.ReceiptImageURL
		after.LastUpdatedAt = now
		after.LastUpdatedBy = userID
		if err := after.Validate(); err != nil {
			return err
		}

		fy, err := s.lockContainingYear(ctx, tx, before.FiscalYearID, after.RecordedAt)
		if err != nil {
			return err
		}

		delta, err := accounting.EditDelta(*before, after)
		if err != nil {
			return err
		}
		touched := append(before.AffectedAccountIDs(), after.AffectedAccountIDs()...)
		if err := s.balances.applyInTx(ctx, tx, *fy, touched, delta, userID, now); err != nil {
			return err
		}
		if err := s.transactionRepo.UpdateTransactionInTx(ctx, tx, after); err != nil {
			return err
		}
		return s.writeHistory(ctx, tx, transactionID, domain.HistoryUpdated, userID, now, before, &after)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction updated", slog.String("transaction_id", transactionID))
	return &after, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string, confirmName string, userID string) (*domain.Transaction, error) {
	if err := confirmDisplayName(ctx, s.userRepo, userID, confirmName); err != nil {
		return nil, err
	}

	now := domain.Now()
	var after domain.Transaction
	err := withTx(ctx, s.transactionRepo, func(tx pgx.Tx) error {
		before, err := s.transactionRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if before.IsDeleted {
			return fmt.Errorf("%w: transaction %s is already deleted", apperrors.ErrConflict, transactionID)
		}

		after = *before
		after.IsDeleted = true
		after.DeletedAt = &now
		after.LastUpdatedAt = now
		after.LastUpdatedBy = userID

		fy, err := s.fiscalYearRepo.FindFiscalYearByIDForUpdate(ctx, tx, before.FiscalYearID)
		if err != nil {
			return err
		}
		effect, err := accounting.Effects(*before)
		if err != nil {
			return err
		}
		if err := s.balances.applyInTx(ctx, tx, *fy, before.AffectedAccountIDs(), accounting.Reverse(effect), userID, now); err != nil {
			return err
		}
		if err := s.transactionRepo.UpdateTransactionInTx(ctx, tx, after); err != nil {
			return err
		}
		return s.writeHistory(ctx, tx, transactionID, domain.HistoryDeleted, userID, now, before, nil)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", transactionID))
	return &after, nil
}

func (s *transactionService) RestoreTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	now := domain.Now()
	var after domain.Transaction
	err := withTx(ctx, s.transactionRepo, func(tx pgx.Tx) error {
		before, err := s.transactionRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if !before.IsDeleted {
			return fmt.Errorf("%w: transaction %s is not deleted", apperrors.ErrConflict, transactionID)
		}

		after = *before
		after.IsDeleted = false
		after.DeletedAt = nil
		after.LastUpdatedAt = now
		after.LastUpdatedBy = userID

		fy, err := s.fiscalYearRepo.FindFiscalYearByIDForUpdate(ctx, tx, before.FiscalYearID)
		if err != nil {
			return err
		}
		effect, err := accounting.Effects(after)
		if err != nil {
			return err
		}
		if err := s.balances.applyInTx(ctx, tx, *fy, after.AffectedAccountIDs(), effect, userID, now); err != nil {
			return err
		}
		if err := s.transactionRepo.UpdateTransactionInTx(ctx, tx, after); err != nil {
			return err
		}
		return s.writeHistory(ctx, tx, transactionID, domain.HistoryRestored, userID, now, before, &after)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to restore transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction restored", slog.String("transaction_id", transactionID))
	return &after, nil
}

// lockContainingYear locks the fiscal year row and checks that recordedAt falls within it.
func (s *transactionService) lockContainingYear(ctx context.Context, tx pgx.Tx, fiscalYearID string, recordedAt time.Time) (*domain.FiscalYear, error) {
	fy, err := s.fiscalYearRepo.FindFiscalYearByIDForUpdate(ctx, tx, fiscalYearID)
	if err != nil {
		return nil, notFoundAs(err, apperrors.ErrValidation, "fiscal year %s does not exist", fiscalYearID)
	}
	if !fy.Contains(recordedAt) {
		return nil, fmt.Errorf("%w: %s is outside %s (%s to %s)", apperrors.ErrOutOfRange,
			recordedAt.Format(dto.DateLayout), fy.Name, fy.StartDate.Format(dto.DateLayout), fy.EndDate.Format(dto.DateLayout))
	}
	return fy, nil
}

func (s *transactionService) writeHistory(ctx context.Context, tx pgx.Tx, transactionID string, action domain.HistoryAction, userID string, now time.Time, oldData, newData *domain.Transaction) error {
	h := domain.NewHistory(uuid.NewString(), transactionID, action, userID, now, oldData, newData)
	if err := s.historyRepo.SaveHistoryInTx(ctx, tx, h); err != nil {
		return fmt.Errorf("failed to record %s history: %w", action, err)
	}
	return nil
}

// categoryFor drops the category of transfers, which have none.
func categoryFor(t domain.TransactionType, category *string) *string {
	if t == domain.Transfer {
		return nil
	}
	return category
}
