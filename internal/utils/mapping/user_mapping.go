package mapping

import (
	"database/sql"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/SscSPs/club_ledger/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:      d.UserID,
		AuthUserID:  d.AuthUserID,
		Email:       d.Email,
		DisplayName: d.DisplayName,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:      m.UserID,
		AuthUserID:  m.AuthUserID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainUserSlice converts a slice of model Users to domain Users
func ToDomainUserSlice(ms []models.User) []domain.User {
	ds := make([]domain.User, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainUser(m)
	}
	return ds
}

// ToModelIdentity converts a domain Identity to an auth_identities row. An empty hash is stored as NULL.
func ToModelIdentity(d domain.Identity) models.Identity {
	hash := sql.NullString{String: d.PasswordHash, Valid: d.PasswordHash != ""}
	return models.Identity{
		AuthUserID:   d.AuthUserID,
		Email:        d.Email,
		PasswordHash: hash,
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainIdentity converts an auth_identities row.
func ToDomainIdentity(m models.Identity) domain.Identity {
	return domain.Identity{
		AuthUserID:   m.AuthUserID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash.String,
		CreatedAt:    m.CreatedAt,
	}
}

// ToDomainInviteCode converts an invite_codes row.
func ToDomainInviteCode(m models.InviteCode) domain.InviteCode {
	return domain.InviteCode{
		InviteCodeID: m.InviteCodeID,
		Code:         m.Code,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
		ExpiresAt:    m.ExpiresAt,
		IsUsed:       m.IsUsed,
		UsedBy:       fromNullString(m.UsedBy),
		UsedAt:       fromNullTime(m.UsedAt),
	}
}

// ToDomainInviteCodeSlice converts invite_codes rows.
func ToDomainInviteCodeSlice(ms []models.InviteCode) []domain.InviteCode {
	ds := make([]domain.InviteCode, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInviteCode(m)
	}
	return ds
}
