package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

// fiscalYearCascade removes a fiscal year with everything scoped to it.
// Rows go in the caller's transaction; receipt blobs are removed after it commits.
type fiscalYearCascade struct {
	BaseService
	fiscalYearRepo portsrepo.FiscalYearTransactionSupport
	blobStore      portsrepo.BlobStore
	balances       *balanceKeeper
}

func newFiscalYearCascade(fiscalYearRepo portsrepo.FiscalYearTransactionSupport, blobStore portsrepo.BlobStore, balances *balanceKeeper) *fiscalYearCascade {
	return &fiscalYearCascade{fiscalYearRepo: fiscalYearRepo, blobStore: blobStore, balances: balances}
}

// deleteInTx deletes the year's history, transactions, categories and the year itself.
// When the year was current, the latest remaining year is promoted and the balances rebased onto it.
func (c *fiscalYearCascade) deleteInTx(ctx context.Context, tx pgx.Tx, fiscalYearID string, userID string, now time.Time) (*domain.DeletionResult, error) {
	result, receiptURLs, err := c.fiscalYearRepo.DeleteFiscalYearCascadeInTx(ctx, tx, fiscalYearID)
	if err != nil {
		return nil, err
	}

	for _, url := range receiptURLs {
		if key, ok := c.blobStore.KeyFromURL(url); ok {
			result.ReceiptKeys = append(result.ReceiptKeys, key)
		} else {
			c.GetLogger(ctx).Warn("Receipt URL not issued by this store, leaving it", slog.String("url", url))
		}
	}

	if !result.WasCurrent {
		return result, nil
	}

	promotedID, err := c.fiscalYearRepo.PromoteLatestFiscalYearInTx(ctx, tx, userID, now)
	if err != nil {
		return nil, err
	}
	result.NewCurrentYearID = promotedID
	if promotedID == nil {
		c.LogInfo(ctx, "Deleted the last fiscal year, no year is current", slog.String("fiscal_year_id", fiscalYearID))
		return result, nil
	}

	promoted, err := c.fiscalYearRepo.FindFiscalYearByIDForUpdate(ctx, tx, *promotedID)
	if err != nil {
		return nil, err
	}
	if _, err := c.balances.rebaseInTx(ctx, tx, *promoted, userID, now); err != nil {
		return nil, err
	}
	return result, nil
}

// removeReceipts deletes the blobs listed in result. It runs after the rows are committed,
// so a failure here leaves orphaned blobs and is reported as a partial failure.
func (c *fiscalYearCascade) removeReceipts(ctx context.Context, result *domain.DeletionResult) error {
	if len(result.ReceiptKeys) == 0 {
		return nil
	}
	if err := c.blobStore.Delete(ctx, result.ReceiptKeys); err != nil {
		c.LogError(ctx, err, "Fiscal year deleted but receipts remain",
			slog.String("fiscal_year_id", result.FiscalYearID),
			slog.Int("receipts", len(result.ReceiptKeys)))
		return fmt.Errorf("%w: fiscal year %s deleted but %d receipt images could not be removed: %v",
			apperrors.ErrPartialFailure, result.FiscalYearID, len(result.ReceiptKeys), err)
	}
	result.ReceiptsDeleted = len(result.ReceiptKeys)
	return nil
}

func deletionDetails(result *domain.DeletionResult) map[string]any {
	details := map[string]any{
		"fiscalYearID":     result.FiscalYearID,
		"fiscalYearName":   result.FiscalYearName,
		"transactionCount": result.TransactionCount,
		"historyCount":     result.HistoryCount,
		"categoryCount":    result.CategoryCount,
		"receiptCount":     len(result.ReceiptKeys),
	}
	if result.NewCurrentYearID != nil {
		details["newCurrentFiscalYearID"] = *result.NewCurrentYearID
	}
	return details
}
