package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/SscSPs/club_ledger/internal/middleware"
	"github.com/SscSPs/club_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"
)

const fallbackAdminRate = "30-M"

const deleteUserSchema = `{
	"type": "object",
	"properties": {"authUserId": {"type": "string", "minLength": 1}},
	"required": ["authUserId"]
}`

const markInviteCodeUsedSchema = `{
	"type": "object",
	"properties": {
		"inviteCodeId": {"type": "string", "minLength": 1},
		"email": {"type": "string", "minLength": 3}
	},
	"required": ["inviteCodeId", "email"]
}`

const recalculateSchema = `{"type": "object"}`

// mustSchema compiles one of the constant schemas above.
func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid admin schema: %v", err))
	}
	return schema
}

// adminHandler serves the service-key endpoints used by operators and scheduled jobs.
type adminHandler struct {
	identityService   portssvc.IdentitySvcFacade
	inviteCodeService portssvc.InviteCodeSvcFacade
	proposalService   portssvc.ProposalSvcFacade

	deleteUserSchema  *gojsonschema.Schema
	markUsedSchema    *gojsonschema.Schema
	recalculateSchema *gojsonschema.Schema
}

func newAdminHandler(services *portssvc.ServiceContainer) *adminHandler {
	return &adminHandler{
		identityService:   services.Identity,
		inviteCodeService: services.InviteCode,
		proposalService:   services.Proposal,
		deleteUserSchema:  mustSchema(deleteUserSchema),
		markUsedSchema:    mustSchema(markInviteCodeUsedSchema),
		recalculateSchema: mustSchema(recalculateSchema),
	}
}

// registerAdminRoutes mounts the administrative endpoints behind the service key and a rate limit.
func registerAdminRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := newAdminHandler(services)

	adminLimiter, err := middleware.NewRateLimiter(cfg.AdminRateLimit)
	if err != nil {
		slog.Warn("Invalid ADMIN_RATE_LIMIT, using fallback", slog.String("error", err.Error()), slog.String("fallback", fallbackAdminRate))
		adminLimiter, _ = middleware.NewRateLimiter(fallbackAdminRate)
	}

	api := r.Group("/api", middleware.RateLimit(adminLimiter), middleware.ServiceKeyAuth(cfg.ServiceRoleKey))
	{
		api.POST("/admin/delete-user", h.deleteUser)
		api.POST("/invite-code/mark-used", h.markInviteCodeUsed)
		api.POST("/proposals/recalculate", h.recalculateProposals)
	}
}

// bindWithSchema validates the raw body against schema and decodes it into out.
// An empty body is treated as an empty object.
func bindWithSchema(c *gin.Context, schema *gojsonschema.Schema, out any) bool {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is not valid JSON"})
		return false
	}
	if !res.Valid() {
		details := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			details = append(details, e.String())
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.Join(details, "; ")})
		return false
	}

	if out == nil {
		return true
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return false
	}
	return true
}

// deleteUser godoc
// @Summary Delete an auth identity
// @Tags admin
// @Accept json
// @Produce json
// @Param X-Service-Key header string true "Service role key"
// @Param body body dto.AdminDeleteUserRequest true "Identity to delete"
// @Success 200 {object} dto.AdminResultResponse
// @Failure 400 {object} map[string]string "Missing authUserId"
// @Failure 401 {object} map[string]string "Invalid service key"
// @Failure 404 {object} map[string]string "Identity not found"
// @Failure 500 {object} map[string]string
// @Router /admin/delete-user [post]
func (h *adminHandler) deleteUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AdminDeleteUserRequest
	if !bindWithSchema(c, h.deleteUserSchema, &req) {
		return
	}

	logger = logger.With(slog.String("auth_user_id", req.AuthUserID))
	if err := h.identityService.DeleteIdentity(c.Request.Context(), req.AuthUserID); err != nil {
		respondWithError(c, logger, err, "Failed to delete user")
		return
	}
	logger.Info("Identity deleted by administrative request")
	c.JSON(http.StatusOK, dto.AdminResultResponse{Success: true})
}

// markInviteCodeUsed godoc
// @Summary Mark an invite code used by the member with an email
// @Tags admin
// @Accept json
// @Produce json
// @Param X-Service-Key header string true "Service role key"
// @Param body body dto.MarkInviteCodeUsedRequest true "Invite code and member email"
// @Success 200 {object} dto.AdminResultResponse
// @Failure 400 {object} map[string]string "Missing fields"
// @Failure 401 {object} map[string]string "Invalid service key"
// @Failure 404 {object} map[string]string "Unknown email or invite code"
// @Failure 409 {object} map[string]string "Invite code already used"
// @Failure 500 {object} map[string]string
// @Router /invite-code/mark-used [post]
func (h *adminHandler) markInviteCodeUsed(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.MarkInviteCodeUsedRequest
	if !bindWithSchema(c, h.markUsedSchema, &req) {
		return
	}

	logger = logger.With(slog.String("invite_code_id", req.InviteCodeID))
	if err := h.inviteCodeService.MarkUsedByEmail(c.Request.Context(), req.InviteCodeID, req.Email); err != nil {
		respondWithError(c, logger, err, "Failed to mark invite code used")
		return
	}
	c.JSON(http.StatusOK, dto.AdminResultResponse{Success: true})
}

// recalculateProposals godoc
// @Summary Re-derive member counts of pending proposals
// @Tags admin
// @Produce json
// @Param X-Service-Key header string true "Service role key"
// @Success 200 {object} dto.AdminResultResponse
// @Failure 401 {object} map[string]string "Invalid service key"
// @Failure 500 {object} map[string]string
// @Router /proposals/recalculate [post]
func (h *adminHandler) recalculateProposals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if !bindWithSchema(c, h.recalculateSchema, nil) {
		return
	}

	if err := h.proposalService.RecalculateProposals(c.Request.Context()); err != nil {
		respondWithError(c, logger, err, "Failed to recalculate proposals")
		return
	}
	logger.Info("Pending proposals recalculated")
	c.JSON(http.StatusOK, dto.AdminResultResponse{Success: true})
}
