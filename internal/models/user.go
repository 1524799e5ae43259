package models

import (
	"database/sql"
	"time"
)

// User is a row of the users table.
type User struct {
	UserID      string `db:"user_id"`
	AuthUserID  string `db:"auth_user_id"`
	Email       string `db:"email"`
	DisplayName string `db:"display_name"`
	AuditFields
}

// Identity is a row of the auth_identities table.
type Identity struct {
	AuthUserID   string         `db:"auth_user_id"`
	Email        string         `db:"email"`
	PasswordHash sql.NullString `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
}

// InviteCode is a row of the invite_codes table.
type InviteCode struct {
	InviteCodeID string         `db:"invite_code_id"`
	Code         string         `db:"code"`
	CreatedBy    string         `db:"created_by"`
	CreatedAt    time.Time      `db:"created_at"`
	ExpiresAt    time.Time      `db:"expires_at"`
	IsUsed       bool           `db:"is_used"`
	UsedBy       sql.NullString `db:"used_by"`
	UsedAt       sql.NullTime   `db:"used_at"`
}
