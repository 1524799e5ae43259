package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/utils"
	"github.com/google/uuid"
)

// DefaultInviteCodeTTL is the lifetime of a new invite code.
const DefaultInviteCodeTTL = 7 * 24 * time.Hour

// inviteCodeAttempts bounds retries when a generated code collides with an existing one.
const inviteCodeAttempts = 3

type inviteCodeService struct {
	BaseService
	inviteCodeRepo portsrepo.InviteCodeRepositoryFacade
	userRepo       portsrepo.UserReader
	ttl            time.Duration
}

// NewInviteCodeService creates the invite code service.
func NewInviteCodeService(inviteCodeRepo portsrepo.InviteCodeRepositoryFacade, userRepo portsrepo.UserReader, ttl time.Duration) portssvc.InviteCodeSvcFacade {
	if ttl <= 0 {
		ttl = DefaultInviteCodeTTL
	}
	return &inviteCodeService{inviteCodeRepo: inviteCodeRepo, userRepo: userRepo, ttl: ttl}
}

var _ portssvc.InviteCodeSvcFacade = (*inviteCodeService)(nil)

func (s *inviteCodeService) CreateInviteCode(ctx context.Context, userID string) (*domain.InviteCode, error) {
	now := domain.Now()
	for attempt := 1; ; attempt++ {
		code, err := utils.GenerateInviteCode()
		if err != nil {
			return nil, err
		}
		invite := domain.InviteCode{
			InviteCodeID: uuid.NewString(),
			Code:         code,
			CreatedBy:    userID,
			CreatedAt:    now,
			ExpiresAt:    now.Add(s.ttl),
		}

		err = s.inviteCodeRepo.SaveInviteCode(ctx, invite)
		if err == nil {
			s.LogInfo(ctx, "Invite code created", slog.String("invite_code_id", invite.InviteCodeID))
			return &invite, nil
		}
		if !errors.Is(err, apperrors.ErrDuplicate) || attempt == inviteCodeAttempts {
			s.LogError(ctx, err, "Failed to create invite code", slog.Int("attempt", attempt))
			return nil, err
		}
	}
}

func (s *inviteCodeService) ListInviteCodes(ctx context.Context) ([]domain.InviteCode, error) {
	purged, err := s.inviteCodeRepo.DeleteExpiredUnused(ctx, domain.Now())
	if err != nil {
		s.LogError(ctx, err, "Failed to purge expired invite codes")
		return nil, err
	}
	if purged > 0 {
		s.LogInfo(ctx, "Purged expired invite codes", slog.Int64("count", purged))
	}
	return s.inviteCodeRepo.ListInviteCodes(ctx)
}

func (s *inviteCodeService) DeleteInviteCode(ctx context.Context, inviteCodeID string) error {
	return s.inviteCodeRepo.DeleteInviteCode(ctx, inviteCodeID)
}

func (s *inviteCodeService) MarkUsedByEmail(ctx context.Context, inviteCodeID string, email string) error {
	user, err := s.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	invite, err := s.inviteCodeRepo.FindInviteCodeByID(ctx, inviteCodeID)
	if err != nil {
		return err
	}
	if invite.IsUsed {
		return fmt.Errorf("%w: invite code already used", apperrors.ErrConflict)
	}

	if err := s.inviteCodeRepo.MarkInviteCodeUsed(ctx, inviteCodeID, user.UserID, domain.Now()); err != nil {
		s.LogError(ctx, err, "Failed to mark invite code used", slog.String("invite_code_id", inviteCodeID))
		return err
	}
	return nil
}
