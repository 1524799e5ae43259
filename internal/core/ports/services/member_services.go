package services

import (
	"context"

	"github.com/SscSPs/club_ledger/internal/core/domain"
)

// MemberSvcFacade manages club members.
type MemberSvcFacade interface {
	GetMember(ctx context.Context, userID string) (*domain.User, error)
	ListMembers(ctx context.Context) ([]domain.User, error)

	// DeleteMember removes a member who never recorded a transaction nor took part in an invite.
	DeleteMember(ctx context.Context, targetUserID string, actorUserID string) error
}

// InviteCodeSvcFacade manages invite codes.
type InviteCodeSvcFacade interface {
	CreateInviteCode(ctx context.Context, userID string) (*domain.InviteCode, error)

	// ListInviteCodes purges expired unused codes before listing.
	ListInviteCodes(ctx context.Context) ([]domain.InviteCode, error)
	DeleteInviteCode(ctx context.Context, inviteCodeID string) error

	// MarkUsedByEmail resolves the member by email and marks the code consumed by them.
	MarkUsedByEmail(ctx context.Context, inviteCodeID string, email string) error
}

// StorageSvcFacade reports quota usage.
type StorageSvcFacade interface {
	GetStorageUsage(ctx context.Context) (*domain.StorageUsage, error)
}

// SystemHistorySvcFacade reads the club-wide audit log.
type SystemHistorySvcFacade interface {
	// ListSystemHistory returns the newest entries first.
	ListSystemHistory(ctx context.Context, limit int) ([]domain.SystemHistory, error)
}
