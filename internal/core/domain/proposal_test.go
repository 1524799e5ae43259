package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestRequiredApprovals(t *testing.T) {
	tests := []struct {
		members int
		want    int
	}{
		{members: 0, want: 1},
		{members: 1, want: 1},
		{members: 2, want: 1},
		{members: 3, want: 2},
		{members: 4, want: 2},
		{members: 5, want: 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.RequiredApprovals(tt.members), "members=%d", tt.members)
	}
}

func newPending(members int) domain.DeletionProposal {
	now := time.Now()
	return domain.DeletionProposal{
		Status:            domain.ProposalPending,
		ProposedAt:        now,
		ExpiresAt:         now.Add(48 * time.Hour),
		TotalMembers:      members,
		RequiredApprovals: domain.RequiredApprovals(members),
	}
}

func TestApplyTally_ApprovesAtThreshold(t *testing.T) {
	p := newPending(4)
	now := p.ProposedAt

	p.ApplyTally(1, 0, now)
	assert.Equal(t, domain.ProposalPending, p.Status, "one approval of two required")

	p.ApplyTally(2, 0, now)
	assert.Equal(t, domain.ProposalApproved, p.Status)

	// A member switching from approve to reject does not revert approval.
	p.ApplyTally(1, 1, now)
	assert.Equal(t, domain.ProposalApproved, p.Status)
	assert.Equal(t, 1, p.ApproveCount)
	assert.Equal(t, 1, p.RejectCount)
}

func TestApplyTally_RejectsWhenUnreachable(t *testing.T) {
	p := newPending(4)
	now := p.ProposedAt

	p.ApplyTally(0, 2, now)
	assert.Equal(t, domain.ProposalPending, p.Status, "two members can still approve")

	p.ApplyTally(0, 3, now)
	assert.Equal(t, domain.ProposalRejected, p.Status)

	p.ApplyTally(4, 0, now)
	assert.Equal(t, domain.ProposalRejected, p.Status, "rejected is terminal")
}

func TestEffectiveStatus_Expiry(t *testing.T) {
	p := newPending(3)
	later := p.ExpiresAt.Add(time.Second)

	assert.Equal(t, domain.ProposalPending, p.EffectiveStatus(p.ExpiresAt))
	assert.Equal(t, domain.ProposalExpired, p.EffectiveStatus(later))
	assert.False(t, p.IsActive(later))
	assert.False(t, p.CanVote(later))

	p.Status = domain.ProposalApproved
	assert.Equal(t, domain.ProposalApproved, p.EffectiveStatus(later), "only pending proposals expire")
	assert.True(t, p.CanVote(later))
}

func TestApplyTally_ExpiredStaysExpired(t *testing.T) {
	p := newPending(4)
	later := p.ExpiresAt.Add(time.Hour)

	p.ApplyTally(3, 0, later)
	assert.Equal(t, domain.ProposalPending, p.Status, "stored status is left alone")
	assert.Equal(t, domain.ProposalExpired, p.EffectiveStatus(later))
	assert.Equal(t, 3, p.ApproveCount)
}

func TestRecalculate(t *testing.T) {
	p := newPending(6)
	now := p.ProposedAt
	p.ApplyTally(2, 0, now)
	assert.Equal(t, domain.ProposalPending, p.Status)

	p.Recalculate(4, 2, 0, now)
	assert.Equal(t, 4, p.TotalMembers)
	assert.Equal(t, 2, p.RequiredApprovals)
	assert.Equal(t, domain.ProposalApproved, p.Status)
}

func TestRecalculate_UsesFreshTally(t *testing.T) {
	p := newPending(4)
	now := p.ProposedAt
	p.ApplyTally(1, 0, now)

	// The only approver left the club, so the recount drops their vote.
	p.Recalculate(2, 0, 0, now)
	assert.Equal(t, 1, p.RequiredApprovals)
	assert.Equal(t, 0, p.ApproveCount)
	assert.Equal(t, domain.ProposalPending, p.Status)
}

func TestRecalculate_ExpiredIsNotApproved(t *testing.T) {
	now := time.Now()
	p := domain.DeletionProposal{
		Status:            domain.ProposalPending,
		ExpiresAt:         now.Add(-time.Hour),
		TotalMembers:      4,
		RequiredApprovals: 2,
		ApproveCount:      1,
	}

	p.Recalculate(2, 1, 0, now)

	assert.Equal(t, domain.ProposalPending, p.Status)
	assert.Equal(t, domain.ProposalExpired, p.EffectiveStatus(now))
	assert.False(t, p.IsActive(now))
}

func TestVoteChoice_IsValid(t *testing.T) {
	assert.True(t, domain.VoteApprove.IsValid())
	assert.True(t, domain.VoteReject.IsValid())
	assert.False(t, domain.VoteChoice("abstain").IsValid())
}

func TestInviteCode_Redeemable(t *testing.T) {
	now := time.Now()
	code := domain.InviteCode{ExpiresAt: now.Add(time.Minute)}

	assert.True(t, code.Redeemable(now))
	assert.False(t, code.Redeemable(now.Add(2*time.Minute)))

	code.IsUsed = true
	assert.False(t, code.Redeemable(now))
}
