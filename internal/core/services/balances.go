package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/club_ledger/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// balanceKeeper keeps the persisted account balances in step with the current fiscal year.
type balanceKeeper struct {
	BaseService
	accountRepo     portsrepo.AccountTransactionSupport
	transactionRepo portsrepo.TransactionTransactionSupport
}

func newBalanceKeeper(accountRepo portsrepo.AccountTransactionSupport, transactionRepo portsrepo.TransactionTransactionSupport) *balanceKeeper {
	return &balanceKeeper{accountRepo: accountRepo, transactionRepo: transactionRepo}
}

// applyInTx locks every account in touched, then adds delta when fy is the current year.
// Locking happens regardless so an unknown account is rejected for any year.
func (k *balanceKeeper) applyInTx(ctx context.Context, tx pgx.Tx, fy domain.FiscalYear, touched []string, delta accounting.Delta, userID string, now time.Time) error {
	ids := uniqueSorted(append(touched, delta.AccountIDs()...))
	if len(ids) == 0 {
		return nil
	}
	if _, err := k.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, ids); err != nil {
		return notFoundAs(err, apperrors.ErrValidation, "transaction references an unknown account")
	}

	if !fy.IsCurrent || len(delta) == 0 {
		k.LogDebug(ctx, "No persisted balance change", slog.String("fiscal_year_id", fy.FiscalYearID), slog.Bool("is_current", fy.IsCurrent))
		return nil
	}
	if err := k.accountRepo.UpdateAccountBalancesInTx(ctx, tx, delta, userID, now); err != nil {
		return fmt.Errorf("failed to update account balances: %w", err)
	}
	return nil
}

// rebaseInTx rewrites each persisted balance to the value derived from fy and returns the accounts that drifted.
func (k *balanceKeeper) rebaseInTx(ctx context.Context, tx pgx.Tx, fy domain.FiscalYear, userID string, now time.Time) ([]domain.BalanceDrift, error) {
	accounts, err := k.accountRepo.ListAccountsForUpdate(ctx, tx)
	if err != nil {
		return nil, err
	}
	txns, err := k.transactionRepo.ListFiscalYearTransactionsInTx(ctx, tx, fy.FiscalYearID)
	if err != nil {
		return nil, err
	}

	persisted := make(map[string]decimal.Decimal, len(accounts))
	for _, acc := range accounts {
		persisted[acc.AccountID] = acc.Balance
	}

	var drifts []domain.BalanceDrift
	updates := make(map[string]decimal.Decimal)
	for _, b := range accounting.DeriveBalances(fy, accounts, txns) {
		if b.Current.Equal(persisted[b.AccountID]) {
			continue
		}
		drifts = append(drifts, domain.BalanceDrift{
			AccountID: b.AccountID,
			Kind:      b.Kind,
			Persisted: persisted[b.AccountID],
			Derived:   b.Current,
		})
		updates[b.AccountID] = b.Current
	}

	if len(updates) > 0 {
		if err := k.accountRepo.SetAccountBalancesInTx(ctx, tx, updates, userID, now); err != nil {
			return nil, fmt.Errorf("failed to rewrite account balances: %w", err)
		}
		k.LogInfo(ctx, "Persisted balances rebased", slog.String("fiscal_year_id", fy.FiscalYearID), slog.Int("accounts", len(updates)))
	}
	return drifts, nil
}

// resolveCurrentFiscalYear returns the flagged year, or the newest one when none is flagged.
func resolveCurrentFiscalYear(ctx context.Context, repo portsrepo.FiscalYearReader) (*domain.FiscalYear, error) {
	fy, err := repo.FindCurrentFiscalYear(ctx)
	if err == nil {
		return fy, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	years, err := repo.ListFiscalYears(ctx)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: no fiscal year exists", apperrors.ErrNotFound)
	}
	return &years[0], nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
