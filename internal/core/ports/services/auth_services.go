package services

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	"github.com/SscSPs/club_ledger/internal/dto"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// IdentitySvcFacade signs members up and in.
type IdentitySvcFacade interface {
	// SignUp redeems the invite code and creates the identity and profile in one transaction.
	SignUp(ctx context.Context, req dto.SignUpRequest) (*domain.User, error)

	// SignIn checks credentials and returns the profile, recreating it if it went missing.
	SignIn(ctx context.Context, email string, password string) (*domain.User, error)

	// SignInWithEmail signs in an identity already verified by an external provider.
	SignInWithEmail(ctx context.Context, email string) (*domain.User, error)

	// DeleteIdentity removes the credential record of authUserID.
	DeleteIdentity(ctx context.Context, authUserID string) error
}

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}

// GoogleOAuthHandlerSvcFacade defines the interface for Google OAuth operations.
type GoogleOAuthHandlerSvcFacade interface {
	// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
	GenerateStateString(ctx context.Context) (string, error)
	// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
	GetGoogleLoginURL(ctx context.Context, state string) string
	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	// ValidateGoogleIDToken validates an ID token string from Google and returns its payload.
	ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error)
}

// ReceiptSvcFacade stores receipt images.
type ReceiptSvcFacade interface {
	// UploadReceipt checks size and content type, then stores the image under a fresh key.
	UploadReceipt(ctx context.Context, filename string, r io.Reader, userID string) (*domain.Receipt, error)
}
