package models

import (
	"database/sql"
	"time"
)

// DeletionProposal is a row of the deletion_proposals table.
type DeletionProposal struct {
	ProposalID        string       `db:"proposal_id"`
	FiscalYearID      string       `db:"fiscal_year_id"`
	FiscalYearName    string       `db:"fiscal_year_name"`
	ProposedBy        string       `db:"proposed_by"`
	ProposedAt        time.Time    `db:"proposed_at"`
	Status            string       `db:"status"`
	ExpiresAt         time.Time    `db:"expires_at"`
	TotalMembers      int          `db:"total_members"`
	RequiredApprovals int          `db:"required_approvals"`
	ApproveCount      int          `db:"approve_count"`
	RejectCount       int          `db:"reject_count"`
	ExecutedAt        sql.NullTime `db:"executed_at"`
}

// DeletionVote is a row of the deletion_votes table.
type DeletionVote struct {
	VoteID     string    `db:"vote_id"`
	ProposalID string    `db:"proposal_id"`
	UserID     string    `db:"user_id"`
	Vote       string    `db:"vote"`
	VotedAt    time.Time `db:"voted_at"`
}
