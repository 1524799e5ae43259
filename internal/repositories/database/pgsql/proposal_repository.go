package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/club_ledger/internal/models"
	"github.com/SscSPs/club_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const proposalColumns = `proposal_id, fiscal_year_id, fiscal_year_name, proposed_by, proposed_at, status, expires_at,
	total_members, required_approvals, approve_count, reject_count, executed_at`

type PgxProposalRepository struct {
	BaseRepository
}

func newPgxProposalRepository(pool *pgxpool.Pool) portsrepo.ProposalRepositoryWithTx {
	return &PgxProposalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ProposalRepositoryWithTx = (*PgxProposalRepository)(nil)

func scanProposal(row pgx.Row) (models.DeletionProposal, error) {
	var m models.DeletionProposal
	err := row.Scan(
		&m.ProposalID,
		&m.FiscalYearID,
		&m.FiscalYearName,
		&m.ProposedBy,
		&m.ProposedAt,
		&m.Status,
		&m.ExpiresAt,
		&m.TotalMembers,
		&m.RequiredApprovals,
		&m.ApproveCount,
		&m.RejectCount,
		&m.ExecutedAt,
	)
	return m, err
}

func collectProposals(rows pgx.Rows) ([]domain.DeletionProposal, error) {
	defer rows.Close()
	proposals := []models.DeletionProposal{}
	for rows.Next() {
		m, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal row: %w", err)
		}
		proposals = append(proposals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposal rows: %w", err)
	}
	return mapping.ToDomainProposalSlice(proposals), nil
}

func findProposal(ctx context.Context, q querier, query, proposalID string) (*domain.DeletionProposal, error) {
	m, err := scanProposal(q.QueryRow(ctx, query, proposalID))
	if err != nil {
		return nil, mapReadError(err, "proposal "+proposalID)
	}
	p := mapping.ToDomainProposal(m)
	return &p, nil
}

func (r *PgxProposalRepository) FindProposalByID(ctx context.Context, proposalID string) (*domain.DeletionProposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM deletion_proposals WHERE proposal_id = $1;`
	return findProposal(ctx, r.Pool, query, proposalID)
}

func (r *PgxProposalRepository) FindProposalByIDForUpdate(ctx context.Context, tx pgx.Tx, proposalID string) (*domain.DeletionProposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM deletion_proposals WHERE proposal_id = $1 FOR UPDATE;`
	return findProposal(ctx, tx, query, proposalID)
}

func (r *PgxProposalRepository) ListProposals(ctx context.Context, fiscalYearID *string) ([]domain.DeletionProposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM deletion_proposals
		WHERE ($1::TEXT IS NULL OR fiscal_year_id = $1)
		ORDER BY proposed_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, fiscalYearID)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	return collectProposals(rows)
}

func (r *PgxProposalRepository) ListOpenProposalsForFiscalYearInTx(ctx context.Context, tx pgx.Tx, fiscalYearID string) ([]domain.DeletionProposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM deletion_proposals
		WHERE fiscal_year_id = $1 AND status IN ('pending', 'approved')
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, fiscalYearID)
	if err != nil {
		return nil, fmt.Errorf("failed to query open proposals of fiscal year %s: %w", fiscalYearID, err)
	}
	return collectProposals(rows)
}

func (r *PgxProposalRepository) ListPendingProposalsForUpdate(ctx context.Context, tx pgx.Tx, now time.Time) ([]domain.DeletionProposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM deletion_proposals
		WHERE status = 'pending' AND expires_at > $1
		ORDER BY proposal_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to lock pending proposals: %w", err)
	}
	return collectProposals(rows)
}

func (r *PgxProposalRepository) SaveProposalInTx(ctx context.Context, tx pgx.Tx, proposal domain.DeletionProposal) error {
	m := mapping.ToModelProposal(proposal)
	query := `
		INSERT INTO deletion_proposals (` + proposalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, query,
		m.ProposalID,
		m.FiscalYearID,
		m.FiscalYearName,
		m.ProposedBy,
		m.ProposedAt,
		m.Status,
		m.ExpiresAt,
		m.TotalMembers,
		m.RequiredApprovals,
		m.ApproveCount,
		m.RejectCount,
		m.ExecutedAt,
	)
	if err != nil {
		return mapWriteError(err, "active proposal for fiscal year "+m.FiscalYearID)
	}
	return nil
}

func (r *PgxProposalRepository) UpdateProposalInTx(ctx context.Context, tx pgx.Tx, proposal domain.DeletionProposal) error {
	m := mapping.ToModelProposal(proposal)
	query := `
		UPDATE deletion_proposals
		SET status = $2, total_members = $3, required_approvals = $4, approve_count = $5, reject_count = $6, executed_at = $7
		WHERE proposal_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.ProposalID,
		m.Status,
		m.TotalMembers,
		m.RequiredApprovals,
		m.ApproveCount,
		m.RejectCount,
		m.ExecutedAt,
	)
	if err != nil {
		return mapWriteError(err, "proposal "+m.ProposalID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxProposalRepository) ListVotes(ctx context.Context, proposalID string) ([]domain.DeletionVote, error) {
	query := `
		SELECT vote_id, proposal_id, user_id, vote, voted_at
		FROM deletion_votes
		WHERE proposal_id = $1
		ORDER BY voted_at;
	`
	rows, err := r.Pool.Query(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes of proposal %s: %w", proposalID, err)
	}
	defer rows.Close()

	votes := []models.DeletionVote{}
	for rows.Next() {
		var m models.DeletionVote
		if err := rows.Scan(&m.VoteID, &m.ProposalID, &m.UserID, &m.Vote, &m.VotedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote row: %w", err)
		}
		votes = append(votes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote rows: %w", err)
	}
	return mapping.ToDomainVoteSlice(votes), nil
}

// UpsertVoteInTx keeps the original vote_id when a member changes their vote.
func (r *PgxProposalRepository) UpsertVoteInTx(ctx context.Context, tx pgx.Tx, vote domain.DeletionVote) error {
	query := `
		INSERT INTO deletion_votes (vote_id, proposal_id, user_id, vote, voted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (proposal_id, user_id) DO UPDATE
		SET vote = EXCLUDED.vote, voted_at = EXCLUDED.voted_at;
	`
	_, err := tx.Exec(ctx, query, vote.VoteID, vote.ProposalID, vote.UserID, string(vote.Vote), vote.VotedAt)
	if err != nil {
		return mapWriteError(err, "vote on proposal "+vote.ProposalID)
	}
	return nil
}

func (r *PgxProposalRepository) CountVotesInTx(ctx context.Context, tx pgx.Tx, proposalID string) (int, int, error) {
	query := `
		SELECT count(*) FILTER (WHERE dv.vote = 'approve'), count(*) FILTER (WHERE dv.vote = 'reject')
		FROM deletion_votes dv
		JOIN users u ON u.user_id = dv.user_id
		WHERE dv.proposal_id = $1;
	`
	var approve, reject int
	if err := tx.QueryRow(ctx, query, proposalID).Scan(&approve, &reject); err != nil {
		return 0, 0, fmt.Errorf("failed to tally votes of proposal %s: %w", proposalID, err)
	}
	return approve, reject, nil
}

// PgxMaintenanceRepository runs the stored maintenance procedures.
type PgxMaintenanceRepository struct {
	BaseRepository
}

func newPgxMaintenanceRepository(pool *pgxpool.Pool) portsrepo.MaintenanceRepository {
	return &PgxMaintenanceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MaintenanceRepository = (*PgxMaintenanceRepository)(nil)

func (r *PgxMaintenanceRepository) RecalculateProposals(ctx context.Context) error {
	if _, err := r.Pool.Exec(ctx, `SELECT recalculate_proposals();`); err != nil {
		return fmt.Errorf("%w: recalculate_proposals: %v", apperrors.ErrCollaborator, err)
	}
	return nil
}
