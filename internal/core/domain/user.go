package domain

import (
	"strings"
	"time"
)

// User is a club member's profile. UserID is the subject of issued tokens.
type User struct {
	UserID      string `json:"userID"` // Primary Key (e.g., UUID)
	AuthUserID  string `json:"authUserID"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AuditFields
}

// Identity is the credential record behind a profile.
type Identity struct {
	AuthUserID   string    `json:"authUserID"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DefaultDisplayName derives a name from the local part of an email address.
func DefaultDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return email
	}
	return local
}

// InviteCode admits a new member at sign-up.
type InviteCode struct {
	InviteCodeID string     `json:"inviteCodeID"`
	Code         string     `json:"code"`
	CreatedBy    string     `json:"createdBy"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	IsUsed       bool       `json:"isUsed"`
	UsedBy       *string    `json:"usedBy,omitempty"`
	UsedAt       *time.Time `json:"usedAt,omitempty"`
}

// Redeemable reports whether the code can still be used at now.
func (i InviteCode) Redeemable(now time.Time) bool {
	return !i.IsUsed && now.Before(i.ExpiresAt)
}

// StorageUsage estimates how much of the hosted quotas the club uses.
type StorageUsage struct {
	TransactionCount int64   `json:"transactionCount"`
	HistoryCount     int64   `json:"historyCount"`
	ImageCount       int64   `json:"imageCount"`
	DatabaseMB       float64 `json:"databaseMB"`
	StorageMB        float64 `json:"storageMB"`
	DatabaseLimitMB  float64 `json:"databaseLimitMB"`
	StorageLimitMB   float64 `json:"storageLimitMB"`
}

// EstimateUsage applies the per-row and per-image size heuristics: one KB per transaction,
// two KB per history row and a hundred KB per image.
func EstimateUsage(transactions, history, images int64, dbLimitMB, storageLimitMB float64) StorageUsage {
	return StorageUsage{
		TransactionCount: transactions,
		HistoryCount:     history,
		ImageCount:       images,
		DatabaseMB:       float64(transactions*1+history*2) / 1024,
		StorageMB:        float64(images*100) / 1024,
		DatabaseLimitMB:  dbLimitMB,
		StorageLimitMB:   storageLimitMB,
	}
}

// Receipt is a stored receipt image.
type Receipt struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
