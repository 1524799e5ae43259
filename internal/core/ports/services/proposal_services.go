package services

import (
	"context"

	"github.com/SscSPs/club_ledger/internal/core/domain"
)

// ProposalReaderSvc defines read operations for deletion proposals.
type ProposalReaderSvc interface {
	ListProposals(ctx context.Context, fiscalYearID *string) ([]domain.DeletionProposal, error)
	GetProposal(ctx context.Context, proposalID string, userID string) (*domain.ProposalDetail, error)
}

// ProposalWorkflowSvc drives the deletion vote.
type ProposalWorkflowSvc interface {
	// ProposeDeletion opens a proposal unless the year already has an active one.
	ProposeDeletion(ctx context.Context, fiscalYearID string, userID string) (*domain.DeletionProposal, error)

	// CastVote records or replaces the member's vote and re-tallies the proposal in the same transaction.
	CastVote(ctx context.Context, proposalID string, choice domain.VoteChoice, userID string) (*domain.DeletionProposal, error)

	// CancelApproval returns an approved proposal to pending. Votes are kept.
	CancelApproval(ctx context.Context, proposalID string, userID string) (*domain.DeletionProposal, error)

	// ExecuteProposal deletes the fiscal year of an approved proposal.
	ExecuteProposal(ctx context.Context, proposalID string, userID string) (*domain.DeletionProposal, *domain.DeletionResult, error)

	// RecalculateProposals re-derives member counts of pending proposals in the database.
	RecalculateProposals(ctx context.Context) error
}

// ProposalSvcFacade combines all proposal service interfaces.
type ProposalSvcFacade interface {
	ProposalReaderSvc
	ProposalWorkflowSvc
}
