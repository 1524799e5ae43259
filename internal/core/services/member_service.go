package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
)

type memberService struct {
	BaseService
	userRepo          portsrepo.UserRepositoryFacade
	identityRepo      portsrepo.IdentityRepositoryFacade
	transactionRepo   portsrepo.TransactionReader
	inviteCodeRepo    portsrepo.InviteCodeRepositoryFacade
	proposalRepo      portsrepo.ProposalRepositoryWithTx
	systemHistoryRepo portsrepo.SystemHistoryRepositoryFacade
}

// NewMemberService creates the member service.
func NewMemberService(
	userRepo portsrepo.UserRepositoryFacade,
	identityRepo portsrepo.IdentityRepositoryFacade,
	transactionRepo portsrepo.TransactionReader,
	inviteCodeRepo portsrepo.InviteCodeRepositoryFacade,
	proposalRepo portsrepo.ProposalRepositoryWithTx,
	systemHistoryRepo portsrepo.SystemHistoryRepositoryFacade,
) portssvc.MemberSvcFacade {
	return &memberService{
		userRepo:          userRepo,
		identityRepo:      identityRepo,
		transactionRepo:   transactionRepo,
		inviteCodeRepo:    inviteCodeRepo,
		proposalRepo:      proposalRepo,
		systemHistoryRepo: systemHistoryRepo,
	}
}

var _ portssvc.MemberSvcFacade = (*memberService)(nil)

func (s *memberService) GetMember(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *memberService) ListMembers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list members")
		return nil, err
	}
	return users, nil
}

// DeleteMember removes the profile and identity, then re-derives the thresholds of pending proposals
// against the smaller membership, all in one transaction.
func (s *memberService) DeleteMember(ctx context.Context, targetUserID string, actorUserID string) error {
	if targetUserID == actorUserID {
		return fmt.Errorf("%w: you cannot delete yourself", apperrors.ErrForbidden)
	}

	target, err := s.userRepo.FindUserByID(ctx, targetUserID)
	if err != nil {
		return err
	}

	recorded, err := s.transactionRepo.CountTransactionsRecordedBy(ctx, targetUserID)
	if err != nil {
		return err
	}
	if recorded > 0 {
		return fmt.Errorf("%w: %s recorded %d transactions and cannot be deleted", apperrors.ErrForbidden, target.DisplayName, recorded)
	}
	invites, err := s.inviteCodeRepo.CountInviteCodesInvolving(ctx, targetUserID)
	if err != nil {
		return err
	}
	if invites > 0 {
		return fmt.Errorf("%w: %s created or used an invite code and cannot be deleted", apperrors.ErrForbidden, target.DisplayName)
	}

	now := domain.Now()
	err = withTx(ctx, s.proposalRepo, func(tx pgx.Tx) error {
		if err := s.userRepo.DeleteUserInTx(ctx, tx, targetUserID); err != nil {
			return err
		}
		if err := s.identityRepo.DeleteIdentityInTx(ctx, tx, target.AuthUserID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		members, err := s.userRepo.CountUsersInTx(ctx, tx)
		if err != nil {
			return err
		}
		recalculated, err := recalculatePendingInTx(ctx, tx, s.proposalRepo, members, now)
		if err != nil {
			return err
		}
		s.LogDebug(ctx, "Pending proposals recalculated", slog.Int("count", recalculated), slog.Int("members", members))

		return recordSystemEvent(ctx, tx, s.systemHistoryRepo, domain.SystemMemberDeleted, actorUserID, now, map[string]any{
			"userID":      target.UserID,
			"displayName": target.DisplayName,
			"email":       target.Email,
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete member", slog.String("target_user_id", targetUserID))
		return err
	}

	s.LogInfo(ctx, "Member deleted", slog.String("target_user_id", targetUserID))
	return nil
}
