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
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultProposalTTL is how long a pending proposal accepts votes.
const DefaultProposalTTL = 48 * time.Hour

// proposalService implements the deletion vote. Every state change locks the proposal
// (or, when proposing, the fiscal year) so concurrent votes tally one after another.
type proposalService struct {
	BaseService
	proposalRepo      portsrepo.ProposalRepositoryWithTx
	fiscalYearRepo    portsrepo.FiscalYearTransactionSupport
	userRepo          portsrepo.UserTransactionSupport
	systemHistoryRepo portsrepo.SystemHistoryRepositoryFacade
	maintenanceRepo   portsrepo.MaintenanceRepository
	cascade           *fiscalYearCascade
	ttl               time.Duration
	now               func() time.Time
}

// ProposalServiceOption configures the proposal service.
type ProposalServiceOption func(*proposalService)

// WithProposalTTL overrides how long proposals stay open.
func WithProposalTTL(ttl time.Duration) ProposalServiceOption {
	return func(s *proposalService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithProposalClock replaces the wall clock, for tests.
func WithProposalClock(now func() time.Time) ProposalServiceOption {
	return func(s *proposalService) {
		s.now = now
	}
}

// NewProposalService creates the deletion proposal service.
func NewProposalService(
	proposalRepo portsrepo.ProposalRepositoryWithTx,
	fiscalYearRepo portsrepo.FiscalYearTransactionSupport,
	accountRepo portsrepo.AccountTransactionSupport,
	transactionRepo portsrepo.TransactionTransactionSupport,
	userRepo portsrepo.UserTransactionSupport,
	systemHistoryRepo portsrepo.SystemHistoryRepositoryFacade,
	maintenanceRepo portsrepo.MaintenanceRepository,
	blobStore portsrepo.BlobStore,
	options ...ProposalServiceOption,
) portssvc.ProposalSvcFacade {
	svc := &proposalService{
		proposalRepo:      proposalRepo,
		fiscalYearRepo:    fiscalYearRepo,
		userRepo:          userRepo,
		systemHistoryRepo: systemHistoryRepo,
		maintenanceRepo:   maintenanceRepo,
		cascade:           newFiscalYearCascade(fiscalYearRepo, blobStore, newBalanceKeeper(accountRepo, transactionRepo)),
		ttl:               DefaultProposalTTL,
		now:               func() time.Time { return domain.Now() },
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ProposalSvcFacade = (*proposalService)(nil)

func (s *proposalService) ListProposals(ctx context.Context, fiscalYearID *string) ([]domain.DeletionProposal, error) {
	proposals, err := s.proposalRepo.ListProposals(ctx, fiscalYearID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list proposals")
		return nil, err
	}
	return proposals, nil
}

func (s *proposalService) GetProposal(ctx context.Context, proposalID string, userID string) (*domain.ProposalDetail, error) {
	p, err := s.proposalRepo.FindProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	votes, err := s.proposalRepo.ListVotes(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	detail := &domain.ProposalDetail{Proposal: *p, Votes: votes}
	for _, v := range votes {
		if v.UserID == userID {
			choice := v.Vote
			detail.MyVote = &choice
			break
		}
	}
	return detail, nil
}

func (s *proposalService) ProposeDeletion(ctx context.Context, fiscalYearID string, userID string) (*domain.DeletionProposal, error) {
	now := s.now()
	var proposal domain.DeletionProposal

	err := withTx(ctx, s.proposalRepo, func(tx pgx.Tx) error {
		fy, err := s.fiscalYearRepo.FindFiscalYearByIDForUpdate(ctx, tx, fiscalYearID)
		if err != nil {
			return err
		}

		open, err := s.proposalRepo.ListOpenProposalsForFiscalYearInTx(ctx, tx, fiscalYearID)
		if err != nil {
			return err
		}
		for _, p := range open {
			if p.IsActive(now) {
				return fmt.Errorf("%w: fiscal year %s already has an active deletion proposal", apperrors.ErrConflict, fy.Name)
			}
			// Expiry is otherwise only computed on read; store it here so the partial unique index admits the new row.
			p.Status = domain.ProposalExpired
			if err := s.proposalRepo.UpdateProposalInTx(ctx, tx, p); err != nil {
				return err
			}
		}

		members, err := s.userRepo.CountUsersInTx(ctx, tx)
		if err != nil {
			return err
		}
		proposal = domain.DeletionProposal{
			ProposalID:        uuid.NewString(),
			FiscalYearID:      fy.FiscalYearID,
			FiscalYearName:    fy.Name,
			ProposedBy:        userID,
			ProposedAt:        now,
			Status:            domain.ProposalPending,
			ExpiresAt:         now.Add(s.ttl),
			TotalMembers:      members,
			RequiredApprovals: domain.RequiredApprovals(members),
		}
		if err := s.proposalRepo.SaveProposalInTx(ctx, tx, proposal); err != nil {
			return err
		}

		return recordSystemEvent(ctx, tx, s.systemHistoryRepo, domain.SystemProposalCreated, userID, now, map[string]any{
			"proposalID":        proposal.ProposalID,
			"fiscalYearID":      fy.FiscalYearID,
			"fiscalYearName":    fy.Name,
			"totalMembers":      members,
			"requiredApprovals": proposal.RequiredApprovals,
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to propose fiscal year deletion", slog.String("fiscal_year_id", fiscalYearID))
		return nil, err
	}

	s.LogInfo(ctx, "Deletion proposed",
		slog.String("proposal_id", proposal.ProposalID),
		slog.String("fiscal_year_id", fiscalYearID),
		slog.Int("required_approvals", proposal.RequiredApprovals))
	return &proposal, nil
}

func (s *proposalService) CastVote(ctx context.Context, proposalID string, choice domain.VoteChoice, userID string) (*domain.DeletionProposal, error) {
	if !choice.IsValid() {
		return nil, fmt.Errorf("%w: vote must be approve or reject", apperrors.ErrValidation)
	}

	now := s.now()
	var proposal *domain.DeletionProposal
	err := withTx(ctx, s.proposalRepo, func(tx pgx.Tx) error {
		p, err := s.proposalRepo.FindProposalByIDForUpdate(ctx, tx, proposalID)
		if err != nil {
			return err
		}
		if !p.CanVote(now) {
			return fmt.Errorf("%w: proposal is %s and no longer accepts votes", apperrors.ErrConflict, p.EffectiveStatus(now))
		}

		vote := domain.DeletionVote{
			VoteID:     uuid.NewString(),
			ProposalID: proposalID,
			UserID:     userID,
			Vote:       choice,
			VotedAt:    now,
		}
		if err := s.proposalRepo.UpsertVoteInTx(ctx, tx, vote); err != nil {
			return err
		}

		approve, reject, err := s.proposalRepo.CountVotesInTx(ctx, tx, proposalID)
		if err != nil {
			return err
		}
		p.ApplyTally(approve, reject, now)
		if err := s.proposalRepo.UpdateProposalInTx(ctx, tx, *p); err != nil {
			return err
		}
		proposal = p
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to cast vote", slog.String("proposal_id", proposalID))
		return nil, err
	}

	s.LogInfo(ctx, "Vote cast",
		slog.String("proposal_id", proposalID),
		slog.String("vote", string(choice)),
		slog.String("status", string(proposal.Status)))
	return proposal, nil
}

func (s *proposalService) CancelApproval(ctx context.Context, proposalID string, userID string) (*domain.DeletionProposal, error) {
	now := s.now()
	var proposal *domain.DeletionProposal
	err := withTx(ctx, s.proposalRepo, func(tx pgx.Tx) error {
		p, err := s.proposalRepo.FindProposalByIDForUpdate(ctx, tx, proposalID)
		if err != nil {
			return err
		}
		if p.Status != domain.ProposalApproved {
			return fmt.Errorf("%w: only an approved proposal can be cancelled, this one is %s", apperrors.ErrConflict, p.EffectiveStatus(now))
		}

		p.Status = domain.ProposalPending
		if err := s.proposalRepo.UpdateProposalInTx(ctx, tx, *p); err != nil {
			return err
		}
		proposal = p
		return recordSystemEvent(ctx, tx, s.systemHistoryRepo, domain.SystemProposalCancelled, userID, now, map[string]any{
			"proposalID":     p.ProposalID,
			"fiscalYearID":   p.FiscalYearID,
			"fiscalYearName": p.FiscalYearName,
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to cancel approval", slog.String("proposal_id", proposalID))
		return nil, err
	}
	return proposal, nil
}

func (s *proposalService) ExecuteProposal(ctx context.Context, proposalID string, userID string) (*domain.DeletionProposal, *domain.DeletionResult, error) {
	now := s.now()
	var proposal *domain.DeletionProposal
	var result *domain.DeletionResult

	err := withTx(ctx, s.proposalRepo, func(tx pgx.Tx) error {
		p, err := s.proposalRepo.FindProposalByIDForUpdate(ctx, tx, proposalID)
		if err != nil {
			return err
		}
		if p.EffectiveStatus(now) != domain.ProposalApproved {
			return fmt.Errorf("%w: only an approved proposal can be executed, this one is %s", apperrors.ErrConflict, p.EffectiveStatus(now))
		}

		if result, err = s.cascade.deleteInTx(ctx, tx, p.FiscalYearID, userID, now); err != nil {
			return err
		}

		p.Status = domain.ProposalExecuted
		p.ExecutedAt = &now
		if err := s.proposalRepo.UpdateProposalInTx(ctx, tx, *p); err != nil {
			return err
		}
		proposal = p

		details := deletionDetails(result)
		details["proposalID"] = p.ProposalID
		details["approveCount"] = p.ApproveCount
		details["rejectCount"] = p.RejectCount
		return recordSystemEvent(ctx, tx, s.systemHistoryRepo, domain.SystemProposalExecuted, userID, now, details)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to execute proposal", slog.String("proposal_id", proposalID))
		return nil, nil, err
	}

	s.LogInfo(ctx, "Deletion proposal executed",
		slog.String("proposal_id", proposalID),
		slog.String("fiscal_year_id", result.FiscalYearID),
		slog.Int64("transactions", result.TransactionCount),
		slog.Int64("history", result.HistoryCount))
	return proposal, result, s.cascade.removeReceipts(ctx, result)
}

func (s *proposalService) RecalculateProposals(ctx context.Context) error {
	if err := s.maintenanceRepo.RecalculateProposals(ctx); err != nil {
		s.LogError(ctx, err, "Failed to recalculate proposals")
		return err
	}
	s.LogInfo(ctx, "Pending proposals recalculated")
	return nil
}

// recalculatePendingInTx re-derives thresholds and tallies of every unexpired pending proposal
// after a membership change. Votes of departed members no longer count.
func recalculatePendingInTx(ctx context.Context, tx pgx.Tx, proposalRepo portsrepo.ProposalTransactionSupport, members int, now time.Time) (int, error) {
	pending, err := proposalRepo.ListPendingProposalsForUpdate(ctx, tx, now)
	if err != nil {
		return 0, err
	}
	for _, p := range pending {
		approve, reject, err := proposalRepo.CountVotesInTx(ctx, tx, p.ProposalID)
		if err != nil {
			return 0, err
		}
		p.Recalculate(members, approve, reject, now)
		if err := proposalRepo.UpdateProposalInTx(ctx, tx, p); err != nil {
			return 0, err
		}
	}
	return len(pending), nil
}
