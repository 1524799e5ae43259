package dto

// AdminDeleteUserRequest names the identity to remove.
type AdminDeleteUserRequest struct {
	AuthUserID string `json:"authUserId"`
}

// MarkInviteCodeUsedRequest resolves a member by email and consumes the invite.
type MarkInviteCodeUsedRequest struct {
	InviteCodeID string `json:"inviteCodeId"`
	Email        string `json:"email"`
}

// AdminResultResponse is the success body of every administrative endpoint.
type AdminResultResponse struct {
	Success bool `json:"success"`
}
