package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ProposalReader defines read operations for deletion proposals and their votes.
type ProposalReader interface {
	FindProposalByID(ctx context.Context, proposalID string) (*domain.DeletionProposal, error)

	// ListProposals returns proposals newest first, optionally for one fiscal year.
	ListProposals(ctx context.Context, fiscalYearID *string) ([]domain.DeletionProposal, error)

	ListVotes(ctx context.Context, proposalID string) ([]domain.DeletionVote, error)
}

// ProposalTransactionSupport holds the writes that must be serialised per proposal or fiscal year.
type ProposalTransactionSupport interface {
	FindProposalByIDForUpdate(ctx context.Context, tx pgx.Tx, proposalID string) (*domain.DeletionProposal, error)

	// ListOpenProposalsForFiscalYearInTx returns pending and approved proposals of the year.
	ListOpenProposalsForFiscalYearInTx(ctx context.Context, tx pgx.Tx, fiscalYearID string) ([]domain.DeletionProposal, error)

	// ListPendingProposalsForUpdate locks every pending proposal that has not expired by now.
	ListPendingProposalsForUpdate(ctx context.Context, tx pgx.Tx, now time.Time) ([]domain.DeletionProposal, error)

	SaveProposalInTx(ctx context.Context, tx pgx.Tx, proposal domain.DeletionProposal) error

	// UpdateProposalInTx writes status, counts, thresholds and execution time.
	UpdateProposalInTx(ctx context.Context, tx pgx.Tx, proposal domain.DeletionProposal) error

	// UpsertVoteInTx inserts the vote or replaces the member's earlier one.
	UpsertVoteInTx(ctx context.Context, tx pgx.Tx, vote domain.DeletionVote) error

	// CountVotesInTx tallies the proposal's votes.
	CountVotesInTx(ctx context.Context, tx pgx.Tx, proposalID string) (approve int, reject int, err error)
}

// ProposalRepositoryFacade combines all proposal repository interfaces.
type ProposalRepositoryFacade interface {
	ProposalReader
	ProposalTransactionSupport
}

// ProposalRepositoryWithTx extends ProposalRepositoryFacade with transaction capabilities.
type ProposalRepositoryWithTx interface {
	ProposalRepositoryFacade
	TransactionManager
}
