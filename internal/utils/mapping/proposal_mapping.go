package mapping

import (
	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/SscSPs/club_ledger/internal/models"
)

// ToModelProposal converts a domain DeletionProposal to its row.
func ToModelProposal(d domain.DeletionProposal) models.DeletionProposal {
	return models.DeletionProposal{
		ProposalID:        d.ProposalID,
		FiscalYearID:      d.FiscalYearID,
		FiscalYearName:    d.FiscalYearName,
		ProposedBy:        d.ProposedBy,
		ProposedAt:        d.ProposedAt,
		Status:            string(d.Status),
		ExpiresAt:         d.ExpiresAt,
		TotalMembers:      d.TotalMembers,
		RequiredApprovals: d.RequiredApprovals,
		ApproveCount:      d.ApproveCount,
		RejectCount:       d.RejectCount,
		ExecutedAt:        toNullTime(d.ExecutedAt),
	}
}

// ToDomainProposal converts a deletion_proposals row to the domain type.
func ToDomainProposal(m models.DeletionProposal) domain.DeletionProposal {
	return domain.DeletionProposal{
		ProposalID:        m.ProposalID,
		FiscalYearID:      m.FiscalYearID,
		FiscalYearName:    m.FiscalYearName,
		ProposedBy:        m.ProposedBy,
		ProposedAt:        m.ProposedAt,
		Status:            domain.ProposalStatus(m.Status),
		ExpiresAt:         m.ExpiresAt,
		TotalMembers:      m.TotalMembers,
		RequiredApprovals: m.RequiredApprovals,
		ApproveCount:      m.ApproveCount,
		RejectCount:       m.RejectCount,
		ExecutedAt:        fromNullTime(m.ExecutedAt),
	}
}

// ToDomainProposalSlice converts deletion_proposals rows.
func ToDomainProposalSlice(ms []models.DeletionProposal) []domain.DeletionProposal {
	ds := make([]domain.DeletionProposal, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainProposal(m)
	}
	return ds
}

// ToDomainVoteSlice converts deletion_votes rows.
func ToDomainVoteSlice(ms []models.DeletionVote) []domain.DeletionVote {
	ds := make([]domain.DeletionVote, len(ms))
	for i, m := range ms {
		ds[i] = domain.DeletionVote{
			VoteID:     m.VoteID,
			ProposalID: m.ProposalID,
			UserID:     m.UserID,
			Vote:       domain.VoteChoice(m.Vote),
			VotedAt:    m.VotedAt,
		}
	}
	return ds
}
