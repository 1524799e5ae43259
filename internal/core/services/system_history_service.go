package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const defaultSystemHistoryLimit = 100

type systemHistoryService struct {
	BaseService
	repo portsrepo.SystemHistoryRepositoryFacade
}

// NewSystemHistoryService creates the audit log reader.
func NewSystemHistoryService(repo portsrepo.SystemHistoryRepositoryFacade) portssvc.SystemHistorySvcFacade {
	return &systemHistoryService{repo: repo}
}

var _ portssvc.SystemHistorySvcFacade = (*systemHistoryService)(nil)

func (s *systemHistoryService) ListSystemHistory(ctx context.Context, limit int) ([]domain.SystemHistory, error) {
	if limit <= 0 {
		limit = defaultSystemHistoryLimit
	}
	entries, err := s.repo.ListSystemHistory(ctx, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list system history")
		return nil, err
	}
	return entries, nil
}

// recordSystemEvent appends an audit entry inside tx.
func recordSystemEvent(ctx context.Context, tx pgx.Tx, repo portsrepo.SystemHistoryRepositoryFacade, action domain.SystemHistoryAction, userID string, now time.Time, details map[string]any) error {
	entry := domain.SystemHistory{
		SystemHistoryID: uuid.NewString(),
		Action:          action,
		PerformedBy:     userID,
		PerformedAt:     now,
		Details:         details,
	}
	if err := repo.SaveSystemHistoryInTx(ctx, tx, entry); err != nil {
		return err
	}
	middleware.GetLoggerFromCtx(ctx).Debug("System history recorded", slog.String("action", string(action)))
	return nil
}
