package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	"github.com/SscSPs/club_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/club_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/SscSPs/club_ledger/internal/platform/config"
	"github.com/SscSPs/club_ledger/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// --- IdentitySvcFacade Implementation ---

type identityService struct {
	BaseService
	txManager      portsrepo.TransactionManager
	identityRepo   portsrepo.IdentityRepositoryFacade
	userRepo       portsrepo.UserRepositoryFacade
	inviteCodeRepo portsrepo.InviteCodeRepositoryFacade
}

// NewIdentityService creates the sign-up and sign-in service.
func NewIdentityService(txManager portsrepo.TransactionManager, identityRepo portsrepo.IdentityRepositoryFacade, userRepo portsrepo.UserRepositoryFacade, inviteCodeRepo portsrepo.InviteCodeRepositoryFacade) portssvc.IdentitySvcFacade {
	return &identityService{
		txManager:      txManager,
		identityRepo:   identityRepo,
		userRepo:       userRepo,
		inviteCodeRepo: inviteCodeRepo,
	}
}

var _ portssvc.IdentitySvcFacade = (*identityService)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *identityService) SignUp(ctx context.Context, req dto.SignUpRequest) (*domain.User, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := domain.Now()
	identity := domain.Identity{
		AuthUserID:   uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	user := domain.User{
		UserID:      uuid.NewString(),
		AuthUserID:  identity.AuthUserID,
		Email:       email,
		DisplayName: name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     identity.AuthUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: identity.AuthUserID,
		},
	}

	err = withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		invite, err := s.inviteCodeRepo.FindInviteCodeByCodeForUpdate(ctx, tx, strings.ToUpper(strings.TrimSpace(req.InviteCode)))
		if err != nil {
			return notFoundAs(err, apperrors.ErrValidation, "invalid invite code")
		}
		if !invite.Redeemable(now) {
			return fmt.Errorf("%w: invite code is used or expired", apperrors.ErrValidation)
		}

		if err := s.identityRepo.SaveIdentityInTx(ctx, tx, identity); err != nil {
			return err
		}
		if err := s.userRepo.SaveUserInTx(ctx, tx, user); err != nil {
			return err
		}
		return s.inviteCodeRepo.MarkInviteCodeUsedInTx(ctx, tx, invite.InviteCodeID, user.UserID, now)
	})
	if err != nil {
		s.LogError(ctx, err, "Sign-up failed", slog.String("email", email))
		return nil, err
	}

	s.LogInfo(ctx, "Member signed up", slog.String("user_id", user.UserID))
	return &user, nil
}

func (s *identityService) SignIn(ctx context.Context, email string, password string) (*domain.User, error) {
	identity, err := s.identityRepo.FindIdentityByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, notFoundAs(err, apperrors.ErrUnauthorized, "invalid email or password")
	}
	// Identities created through Google carry no password.
	if identity.PasswordHash == "" || !utils.CheckPasswordHash(password, identity.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}
	return s.profileFor(ctx, identity)
}

func (s *identityService) SignInWithEmail(ctx context.Context, email string) (*domain.User, error) {
	identity, err := s.identityRepo.FindIdentityByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, notFoundAs(err, apperrors.ErrUnauthorized, "no member is registered with %s", email)
	}
	return s.profileFor(ctx, identity)
}

func (s *identityService) DeleteIdentity(ctx context.Context, authUserID string) error {
	if err := s.identityRepo.DeleteIdentity(ctx, authUserID); err != nil {
		s.LogError(ctx, err, "Failed to delete identity", slog.String("auth_user_id", authUserID))
		return err
	}
	s.LogInfo(ctx, "Identity deleted", slog.String("auth_user_id", authUserID))
	return nil
}

// profileFor returns the identity's profile, recreating it when the row went missing.
func (s *identityService) profileFor(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	user, err := s.userRepo.FindUserByAuthUserID(ctx, identity.AuthUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := domain.Now()
	recreated := domain.User{
		UserID:      uuid.NewString(),
		AuthUserID:  identity.AuthUserID,
		Email:       identity.Email,
		DisplayName: domain.DefaultDisplayName(identity.Email),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     identity.AuthUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: identity.AuthUserID,
		},
	}
	if err := s.userRepo.SaveUser(ctx, recreated); err != nil {
		return nil, err
	}
	s.GetLogger(ctx).Warn("Profile was missing and has been recreated",
		slog.String("auth_user_id", identity.AuthUserID),
		slog.String("user_id", recreated.UserID))
	return &recreated, nil
}

// --- TokenSvcFacade Implementation ---

// tokenService issues the HS256 access tokens accepted by the auth middleware.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

// GenerateAccessToken creates a new JWT access token for the given user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	// Calculate expiry time first
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)

	accessToken, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, expiryTime, nil
}

// --- GoogleOAuthHandlerSvcFacade Implementation ---

// googleOAuthHandlerService implements the GoogleOAuthHandlerSvcFacade.
type googleOAuthHandlerService struct {
	cfg *config.Config
	// oauth2Config is configured at initialization time
	oauth2Config *oauth2.Config
}

// NewGoogleOAuthHandlerService creates a new instance of googleOAuthHandlerService.
func NewGoogleOAuthHandlerService(cfg *config.Config) portssvc.GoogleOAuthHandlerSvcFacade {
	return &googleOAuthHandlerService{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "https://www.googleapis.com/auth/userinfo.email"},
			Endpoint:     google.Endpoint,
		},
	}
}

// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
func (s *googleOAuthHandlerService) GenerateStateString(ctx context.Context) (string, error) {
	// 16 bytes -> 32 char hex string
	state, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate state string for OAuth: %w", err)
	}
	return state, nil
}

// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
func (s *googleOAuthHandlerService) GetGoogleLoginURL(ctx context.Context, state string) string {
	return s.oauth2Config.AuthCodeURL(state)
}

// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
func (s *googleOAuthHandlerService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange oauth code for token: %v", apperrors.ErrCollaborator, err)
	}
	return token, nil
}

// ValidateGoogleIDToken validates an ID token received from Google and returns the payload if valid.
func (s *googleOAuthHandlerService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	if s.cfg.GoogleClientID == "" {
		return nil, errors.New("google client ID is not configured in the application")
	}

	payload, err := idtoken.Validate(ctx, idTokenString, s.cfg.GoogleClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: google ID token validation failed: %v", apperrors.ErrUnauthorized, err)
	}
	return payload, nil
}
