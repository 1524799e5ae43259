package domain

import (
	"time"
)

// ProposalStatus is the stored or effective state of a deletion proposal.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
	ProposalExpired  ProposalStatus = "expired"
	ProposalExecuted ProposalStatus = "executed"
)

// VoteChoice is a member's position on a proposal.
type VoteChoice string

const (
	VoteApprove VoteChoice = "approve"
	VoteReject  VoteChoice = "reject"
)

// IsValid reports whether v is approve or reject.
func (v VoteChoice) IsValid() bool {
	return v == VoteApprove || v == VoteReject
}

// RequiredApprovals is ceil(members/2), with a floor of one approval.
func RequiredApprovals(members int) int {
	if members <= 0 {
		return 1
	}
	return (members + 1) / 2
}

// DeletionProposal gates the irreversible deletion of a fiscal year behind a member vote.
type DeletionProposal struct {
	ProposalID        string         `json:"proposalID"`
	FiscalYearID      string         `json:"fiscalYearID"`
	FiscalYearName    string         `json:"fiscalYearName"`
	ProposedBy        string         `json:"proposedBy"`
	ProposedAt        time.Time      `json:"proposedAt"`
	Status            ProposalStatus `json:"status"`
	ExpiresAt         time.Time      `json:"expiresAt"`
	TotalMembers      int            `json:"totalMembers"`
	RequiredApprovals int            `json:"requiredApprovals"`
	ApproveCount      int            `json:"approveCount"`
	RejectCount       int            `json:"rejectCount"`
	ExecutedAt        *time.Time     `json:"executedAt,omitempty"`
}

// EffectiveStatus folds read-time expiry into the stored status.
func (p DeletionProposal) EffectiveStatus(now time.Time) ProposalStatus {
	if p.Status == ProposalPending && now.After(p.ExpiresAt) {
		return ProposalExpired
	}
	return p.Status
}

// IsActive reports whether the proposal still blocks a new one for the same year.
func (p DeletionProposal) IsActive(now time.Time) bool {
	s := p.EffectiveStatus(now)
	return s == ProposalPending || s == ProposalApproved
}

// CanVote reports whether votes are still accepted.
func (p DeletionProposal) CanVote(now time.Time) bool {
	return p.IsActive(now)
}

// approvalUnreachable is true once enough members rejected that the threshold cannot be met.
func (p DeletionProposal) approvalUnreachable() bool {
	return p.RejectCount > p.TotalMembers-p.RequiredApprovals
}

// ApplyTally records fresh vote counts and moves the stored status accordingly.
// Pending becomes approved at the threshold or rejected once approval is out of reach.
// Approved never falls back on its own; only Cancel returns it to pending.
// A pending proposal past its expiry is frozen at expired and keeps its stored status.
func (p *DeletionProposal) ApplyTally(approve, reject int, now time.Time) {
	p.ApproveCount = approve
	p.RejectCount = reject

	if p.EffectiveStatus(now) != ProposalPending {
		return
	}
	switch {
	case p.ApproveCount >= p.RequiredApprovals:
		p.Status = ProposalApproved
	case p.approvalUnreachable():
		p.Status = ProposalRejected
	}
}

// Recalculate resets the member-derived thresholds, as after a membership change,
// and re-evaluates a pending proposal against a fresh tally of the remaining members' votes.
func (p *DeletionProposal) Recalculate(members, approve, reject int, now time.Time) {
	p.TotalMembers = members
	p.RequiredApprovals = RequiredApprovals(members)
	p.ApplyTally(approve, reject, now)
}

// DeletionVote is one member's vote. There is at most one per (proposal, user).
type DeletionVote struct {
	VoteID     string     `json:"voteID"`
	ProposalID string     `json:"proposalID"`
	UserID     string     `json:"userID"`
	Vote       VoteChoice `json:"vote"`
	VotedAt    time.Time  `json:"votedAt"`
}

// ProposalDetail is a proposal with its votes and the caller's own vote, if any.
type ProposalDetail struct {
	Proposal DeletionProposal `json:"proposal"`
	Votes    []DeletionVote   `json:"votes"`
	MyVote   *VoteChoice      `json:"myVote,omitempty"`
}
