package dto

import (
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
)

// CreateProposalRequest names the fiscal year proposed for deletion.
type CreateProposalRequest struct {
	FiscalYearID string `json:"fiscalYearID" binding:"required"`
}

// CastVoteRequest records or changes the caller's vote.
type CastVoteRequest struct {
	Vote domain.VoteChoice `json:"vote" binding:"required,oneof=approve reject"`
}

// ListProposalsParams defines query parameters for listing proposals.
type ListProposalsParams struct {
	FiscalYearID *string `form:"fiscalYearID"`
}

// ProposalResponse is a proposal with its status as of the request.
type ProposalResponse struct {
	ProposalID        string                `json:"proposalID"`
	FiscalYearID      string                `json:"fiscalYearID"`
	FiscalYearName    string                `json:"fiscalYearName"`
	ProposedBy        string                `json:"proposedBy"`
	ProposedAt        time.Time             `json:"proposedAt"`
	Status            domain.ProposalStatus `json:"status"`
	ExpiresAt         time.Time             `json:"expiresAt"`
	TotalMembers      int                   `json:"totalMembers"`
	RequiredApprovals int                   `json:"requiredApprovals"`
	ApproveCount      int                   `json:"approveCount"`
	RejectCount       int                   `json:"rejectCount"`
	ExecutedAt        *time.Time            `json:"executedAt,omitempty"`
}

// ToProposalResponse converts a proposal, folding read-time expiry into Status.
func ToProposalResponse(p *domain.DeletionProposal, now time.Time) ProposalResponse {
	return ProposalResponse{
		ProposalID:        p.ProposalID,
		FiscalYearID:      p.FiscalYearID,
		FiscalYearName:    p.FiscalYearName,
		ProposedBy:        p.ProposedBy,
		ProposedAt:        p.ProposedAt,
		Status:            p.EffectiveStatus(now),
		ExpiresAt:         p.ExpiresAt,
		TotalMembers:      p.TotalMembers,
		RequiredApprovals: p.RequiredApprovals,
		ApproveCount:      p.ApproveCount,
		RejectCount:       p.RejectCount,
		ExecutedAt:        p.ExecutedAt,
	}
}

// ToListProposalResponse converts a slice of proposals.
func ToListProposalResponse(proposals []domain.DeletionProposal, now time.Time) []ProposalResponse {
	res := make([]ProposalResponse, len(proposals))
	for i, p := range proposals {
		res[i] = ToProposalResponse(&p, now)
	}
	return res
}

// ProposalDetailResponse adds the votes and the caller's own vote.
type ProposalDetailResponse struct {
	Proposal ProposalResponse      `json:"proposal"`
	Votes    []domain.DeletionVote `json:"votes"`
	MyVote   *domain.VoteChoice    `json:"myVote,omitempty"`
}

// ToProposalDetailResponse converts a proposal detail.
func ToProposalDetailResponse(d *domain.ProposalDetail, now time.Time) ProposalDetailResponse {
	return ProposalDetailResponse{
		Proposal: ToProposalResponse(&d.Proposal, now),
		Votes:    d.Votes,
		MyVote:   d.MyVote,
	}
}

// ExecuteProposalResponse reports what the deletion removed.
type ExecuteProposalResponse struct {
	Proposal ProposalResponse      `json:"proposal"`
	Deletion domain.DeletionResult `json:"deletion"`
	Warning  string                `json:"warning,omitempty"`
}
