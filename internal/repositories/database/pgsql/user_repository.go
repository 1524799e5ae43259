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

const userColumns = `user_id, auth_user_id, email, display_name, created_at, created_by, last_updated_at, last_updated_by`

type PgxUserRepository struct {
	BaseRepository
}

// newPgxUserRepository creates a new repository for member profiles.
func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func scanUser(row pgx.Row) (models.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.AuthUserID,
		&m.Email,
		&m.DisplayName,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxUserRepository) findUser(ctx context.Context, column, value string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1;`
	m, err := scanUser(r.Pool.QueryRow(ctx, query, value))
	if err != nil {
		return nil, mapReadError(err, "user by "+column)
	}
	u := mapping.ToDomainUser(m)
	return &u, nil
}

// FindUserByID retrieves a user by their ID.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findUser(ctx, "user_id", userID)
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findUser(ctx, "email", email)
}

func (r *PgxUserRepository) FindUserByAuthUserID(ctx context.Context, authUserID string) (*domain.User, error) {
	return r.findUser(ctx, "auth_user_id", authUserID)
}

// ListUsers retrieves every member ordered by display name.
func (r *PgxUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY display_name, created_at;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		m, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return mapping.ToDomainUserSlice(users), nil
}

func countUsers(ctx context.Context, q querier) (int, error) {
	var n int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM users;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *PgxUserRepository) CountUsers(ctx context.Context) (int, error) {
	return countUsers(ctx, r.Pool)
}

func (r *PgxUserRepository) CountUsersInTx(ctx context.Context, tx pgx.Tx) (int, error) {
	return countUsers(ctx, tx)
}

func saveUser(ctx context.Context, q querier, user domain.User) error {
	m := mapping.ToModelUser(user)
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := q.Exec(ctx, query,
		m.UserID,
		m.AuthUserID,
		m.Email,
		m.DisplayName,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "user with email "+m.Email)
	}
	return nil
}

// SaveUser inserts a new user record.
func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	return saveUser(ctx, r.Pool, user)
}

func (r *PgxUserRepository) SaveUserInTx(ctx context.Context, tx pgx.Tx, user domain.User) error {
	return saveUser(ctx, tx, user)
}

func (r *PgxUserRepository) DeleteUserInTx(ctx context.Context, tx pgx.Tx, userID string) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM users WHERE user_id = $1;`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

type PgxIdentityRepository struct {
	BaseRepository
}

func newPgxIdentityRepository(pool *pgxpool.Pool) portsrepo.IdentityRepositoryFacade {
	return &PgxIdentityRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.IdentityRepositoryFacade = (*PgxIdentityRepository)(nil)

func (r *PgxIdentityRepository) findIdentity(ctx context.Context, column, value string) (*domain.Identity, error) {
	query := `SELECT auth_user_id, email, password_hash, created_at FROM auth_identities WHERE ` + column + ` = $1;`
	var m models.Identity
	if err := r.Pool.QueryRow(ctx, query, value).Scan(&m.AuthUserID, &m.Email, &m.PasswordHash, &m.CreatedAt); err != nil {
		return nil, mapReadError(err, "identity by "+column)
	}
	id := mapping.ToDomainIdentity(m)
	return &id, nil
}

func (r *PgxIdentityRepository) FindIdentityByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.findIdentity(ctx, "email", email)
}

func (r *PgxIdentityRepository) FindIdentityByID(ctx context.Context, authUserID string) (*domain.Identity, error) {
	return r.findIdentity(ctx, "auth_user_id", authUserID)
}

func (r *PgxIdentityRepository) SaveIdentityInTx(ctx context.Context, tx pgx.Tx, identity domain.Identity) error {
	m := mapping.ToModelIdentity(identity)
	query := `
		INSERT INTO auth_identities (auth_user_id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4);
	`
	if _, err := tx.Exec(ctx, query, m.AuthUserID, m.Email, m.PasswordHash, m.CreatedAt); err != nil {
		return mapWriteError(err, "identity with email "+m.Email)
	}
	return nil
}

func deleteIdentity(ctx context.Context, q querier, authUserID string) error {
	cmdTag, err := q.Exec(ctx, `DELETE FROM auth_identities WHERE auth_user_id = $1;`, authUserID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete identity %s: %v", apperrors.ErrCollaborator, authUserID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxIdentityRepository) DeleteIdentity(ctx context.Context, authUserID string) error {
	return deleteIdentity(ctx, r.Pool, authUserID)
}

func (r *PgxIdentityRepository) DeleteIdentityInTx(ctx context.Context, tx pgx.Tx, authUserID string) error {
	return deleteIdentity(ctx, tx, authUserID)
}

const inviteCodeColumns = `invite_code_id, code, created_by, created_at, expires_at, is_used, used_by, used_at`

type PgxInviteCodeRepository struct {
	BaseRepository
}

func newPgxInviteCodeRepository(pool *pgxpool.Pool) portsrepo.InviteCodeRepositoryFacade {
	return &PgxInviteCodeRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InviteCodeRepositoryFacade = (*PgxInviteCodeRepository)(nil)

func scanInviteCode(row pgx.Row) (models.InviteCode, error) {
	var m models.InviteCode
	err := row.Scan(&m.InviteCodeID, &m.Code, &m.CreatedBy, &m.CreatedAt, &m.ExpiresAt, &m.IsUsed, &m.UsedBy, &m.UsedAt)
	return m, err
}

func (r *PgxInviteCodeRepository) SaveInviteCode(ctx context.Context, code domain.InviteCode) error {
	query := `
		INSERT INTO invite_codes (invite_code_id, code, created_by, created_at, expires_at, is_used)
		VALUES ($1, $2, $3, $4, $5, FALSE);
	`
	if _, err := r.Pool.Exec(ctx, query, code.InviteCodeID, code.Code, code.CreatedBy, code.CreatedAt, code.ExpiresAt); err != nil {
		return mapWriteError(err, "invite code")
	}
	return nil
}

func (r *PgxInviteCodeRepository) FindInviteCodeByID(ctx context.Context, inviteCodeID string) (*domain.InviteCode, error) {
	query := `SELECT ` + inviteCodeColumns + ` FROM invite_codes WHERE invite_code_id = $1;`
	m, err := scanInviteCode(r.Pool.QueryRow(ctx, query, inviteCodeID))
	if err != nil {
		return nil, mapReadError(err, "invite code "+inviteCodeID)
	}
	c := mapping.ToDomainInviteCode(m)
	return &c, nil
}

func (r *PgxInviteCodeRepository) FindInviteCodeByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*domain.InviteCode, error) {
	query := `SELECT ` + inviteCodeColumns + ` FROM invite_codes WHERE code = $1 FOR UPDATE;`
	m, err := scanInviteCode(tx.QueryRow(ctx, query, code))
	if err != nil {
		return nil, mapReadError(err, "invite code")
	}
	c := mapping.ToDomainInviteCode(m)
	return &c, nil
}

func (r *PgxInviteCodeRepository) ListInviteCodes(ctx context.Context) ([]domain.InviteCode, error) {
	query := `SELECT ` + inviteCodeColumns + ` FROM invite_codes ORDER BY created_at DESC;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query invite codes: %w", err)
	}
	defer rows.Close()

	codes := []models.InviteCode{}
	for rows.Next() {
		m, err := scanInviteCode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite code row: %w", err)
		}
		codes = append(codes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invite code rows: %w", err)
	}
	return mapping.ToDomainInviteCodeSlice(codes), nil
}

func (r *PgxInviteCodeRepository) DeleteExpiredUnused(ctx context.Context, now time.Time) (int64, error) {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM invite_codes WHERE NOT is_used AND expires_at <= $1;`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invite codes: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

func (r *PgxInviteCodeRepository) DeleteInviteCode(ctx context.Context, inviteCodeID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM invite_codes WHERE invite_code_id = $1;`, inviteCodeID)
	if err != nil {
		return fmt.Errorf("failed to delete invite code %s: %w", inviteCodeID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxInviteCodeRepository) CountInviteCodesInvolving(ctx context.Context, userID string) (int64, error) {
	var n int64
	query := `SELECT count(*) FROM invite_codes WHERE created_by = $1 OR used_by = $1;`
	if err := r.Pool.QueryRow(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count invite codes of %s: %w", userID, err)
	}
	return n, nil
}

func markInviteCodeUsed(ctx context.Context, q querier, inviteCodeID, userID string, now time.Time) error {
	query := `
		UPDATE invite_codes
		SET is_used = TRUE, used_by = $2, used_at = $3
		WHERE invite_code_id = $1;
	`
	cmdTag, err := q.Exec(ctx, query, inviteCodeID, userID, now)
	if err != nil {
		return fmt.Errorf("failed to mark invite code %s used: %w", inviteCodeID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxInviteCodeRepository) MarkInviteCodeUsedInTx(ctx context.Context, tx pgx.Tx, inviteCodeID string, userID string, now time.Time) error {
	return markInviteCodeUsed(ctx, tx, inviteCodeID, userID, now)
}

func (r *PgxInviteCodeRepository) MarkInviteCodeUsed(ctx context.Context, inviteCodeID string, userID string, now time.Time) error {
	return markInviteCodeUsed(ctx, r.Pool, inviteCodeID, userID, now)
}
