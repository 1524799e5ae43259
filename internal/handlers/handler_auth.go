package handlers

import (
	"log/slog"
	"net/http"

	limitergin "github.com/ulule/limiter/v3/drivers/middleware/gin"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/SscSPs/club_ledger/internal/middleware"
	"github.com/SscSPs/club_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
)

const fallbackLoginRate = "5-M"

// authHandler handles sign-up and password sign-in.
type authHandler struct {
	identityService portssvc.IdentitySvcFacade
	tokenService    portssvc.TokenSvcFacade
}

func newAuthHandler(is portssvc.IdentitySvcFacade, ts portssvc.TokenSvcFacade) *authHandler {
	return &authHandler{identityService: is, tokenService: ts}
}

// registerAuthRoutes sets up the public authentication routes.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := newAuthHandler(services.Identity, services.TokenService)

	ipLimiter, err := middleware.NewRateLimiter(cfg.LoginRateLimit)
	if err != nil {
		slog.Warn("Invalid LOGIN_RATE_LIMIT, using fallback", slog.String("error", err.Error()), slog.String("fallback", fallbackLoginRate))
		ipLimiter, _ = middleware.NewRateLimiter(fallbackLoginRate)
	}
	limitMiddleware := limitergin.NewMiddleware(ipLimiter)

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/signup", limitMiddleware, h.signUp)
		auth.POST("/login", limitMiddleware, h.login)
		registerGoogleOAuthRoutes(auth, services)
	}
}

// respondWithToken issues an access token for user.
func (h *authHandler) respondWithToken(c *gin.Context, logger *slog.Logger, status int, user *domain.User) {
	token, expiresAt, err := h.tokenService.GenerateAccessToken(c.Request.Context(), user)
	if err != nil {
		logger.Error("Failed to generate access token", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(status, dto.LoginResponse{Token: token, ExpiresAt: expiresAt.Unix(), User: dto.ToUserResponse(user)})
}

// signUp godoc
// @Summary Sign up with an invite code
// @Description Redeems an invite code, creates the member and returns an access token.
// @Tags auth
// @Accept json
// @Produce json
// @Param signup body dto.SignUpRequest true "Sign-up details"
// @Success 201 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid input or invite code"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *authHandler) signUp(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SignUp", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received sign-up request", slog.String("email", req.Email))
	user, err := h.identityService.SignUp(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to sign up")
		return
	}

	logger.Info("Member signed up", slog.String("user_id", user.UserID))
	h.respondWithToken(c, logger, http.StatusCreated, user)
}

// login godoc
// @Summary User login
// @Description Authenticates a member by email and password and returns a JWT token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	user, err := h.identityService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if statusForError(err) == http.StatusUnauthorized {
			logger.Warn("Rejected login", slog.String("email", req.Email))
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
			return
		}
		respondWithError(c, logger, err, "Failed to sign in")
		return
	}

	h.respondWithToken(c, logger, http.StatusOK, user)
}
