package dto

import (
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
)

// UserResponse defines the data returned for a member.
type UserResponse struct {
	UserID      string    `json:"userID"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToUserResponse converts a domain.User to UserResponse DTO
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:      u.UserID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// ListUsersResponse wraps the list of members.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ToListUserResponse converts a slice of domain.User to ListUsersResponse DTO
func ToListUserResponse(users []domain.User) ListUsersResponse {
	userResponses := make([]UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = ToUserResponse(&user)
	}
	return ListUsersResponse{
		Users: userResponses,
	}
}

// InviteCodeResponse defines the data returned for an invite code.
type InviteCodeResponse struct {
	InviteCodeID string     `json:"inviteCodeID"`
	Code         string     `json:"code"`
	CreatedBy    string     `json:"createdBy"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	IsUsed       bool       `json:"isUsed"`
	UsedBy       *string    `json:"usedBy,omitempty"`
	UsedAt       *time.Time `json:"usedAt,omitempty"`
}

// ToInviteCodeResponse converts a domain.InviteCode to its response DTO.
func ToInviteCodeResponse(c *domain.InviteCode) InviteCodeResponse {
	return InviteCodeResponse{
		InviteCodeID: c.InviteCodeID,
		Code:         c.Code,
		CreatedBy:    c.CreatedBy,
		CreatedAt:    c.CreatedAt,
		ExpiresAt:    c.ExpiresAt,
		IsUsed:       c.IsUsed,
		UsedBy:       c.UsedBy,
		UsedAt:       c.UsedAt,
	}
}

// ToListInviteCodeResponse converts a slice of invite codes.
func ToListInviteCodeResponse(codes []domain.InviteCode) []InviteCodeResponse {
	res := make([]InviteCodeResponse, len(codes))
	for i, c := range codes {
		res[i] = ToInviteCodeResponse(&c)
	}
	return res
}
