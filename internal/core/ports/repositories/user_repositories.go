package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	FindUserByAuthUserID(ctx context.Context, authUserID string) (*domain.User, error)

	// ListUsers returns every member ordered by display name.
	ListUsers(ctx context.Context) ([]domain.User, error)

	CountUsers(ctx context.Context) (int, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error
}

// UserTransactionSupport holds the profile writes that share a caller's transaction.
type UserTransactionSupport interface {
	SaveUserInTx(ctx context.Context, tx pgx.Tx, user domain.User) error
	DeleteUserInTx(ctx context.Context, tx pgx.Tx, userID string) error
	CountUsersInTx(ctx context.Context, tx pgx.Tx) (int, error)
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserTransactionSupport
}

// IdentityRepositoryFacade stores sign-in credentials.
type IdentityRepositoryFacade interface {
	FindIdentityByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindIdentityByID(ctx context.Context, authUserID string) (*domain.Identity, error)
	SaveIdentityInTx(ctx context.Context, tx pgx.Tx, identity domain.Identity) error

	// DeleteIdentity removes the credential record. The profile, if any, is left to the caller.
	DeleteIdentity(ctx context.Context, authUserID string) error
	DeleteIdentityInTx(ctx context.Context, tx pgx.Tx, authUserID string) error
}

// InviteCodeRepositoryFacade stores invite codes.
type InviteCodeRepositoryFacade interface {
	SaveInviteCode(ctx context.Context, code domain.InviteCode) error
	FindInviteCodeByID(ctx context.Context, inviteCodeID string) (*domain.InviteCode, error)
	ListInviteCodes(ctx context.Context) ([]domain.InviteCode, error)

	// DeleteExpiredUnused removes codes that can no longer be redeemed and were never used.
	DeleteExpiredUnused(ctx context.Context, now time.Time) (int64, error)
	DeleteInviteCode(ctx context.Context, inviteCodeID string) error

	// CountInviteCodesInvolving counts codes the member created or redeemed.
	CountInviteCodesInvolving(ctx context.Context, userID string) (int64, error)

	FindInviteCodeByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*domain.InviteCode, error)
	MarkInviteCodeUsedInTx(ctx context.Context, tx pgx.Tx, inviteCodeID string, userID string, now time.Time) error

	// MarkInviteCodeUsed marks the code consumed outside any caller transaction.
	MarkInviteCodeUsed(ctx context.Context, inviteCodeID string, userID string, now time.Time) error
}
