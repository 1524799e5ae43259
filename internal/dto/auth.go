package dto

// SignUpRequest registers a new member with an invite code.
type SignUpRequest struct {
	InviteCode string `json:"inviteCode" binding:"required,len=6,alphanum"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8,max=72"`
	Name       string `json:"name" binding:"required,notblank,max=50"`
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleExchangeRequest carries the authorization code returned by Google.
type GoogleExchangeRequest struct {
	Code  string `json:"code" binding:"required"`
	State string `json:"state" binding:"required"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// GoogleLoginResponse carries the URL the browser should be sent to.
type GoogleLoginResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}
