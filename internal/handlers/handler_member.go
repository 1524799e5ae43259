package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/SscSPs/club_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// memberHandler handles requests about club members and their invite codes.
type memberHandler struct {
	memberService     portssvc.MemberSvcFacade
	inviteCodeService portssvc.InviteCodeSvcFacade
	storageService    portssvc.StorageSvcFacade
}

func newMemberHandler(ms portssvc.MemberSvcFacade, ics portssvc.InviteCodeSvcFacade, ss portssvc.StorageSvcFacade) *memberHandler {
	return &memberHandler{
		memberService:     ms,
		inviteCodeService: ics,
		storageService:    ss,
	}
}

// registerMemberRoutes registers member, invite code and storage usage routes.
func registerMemberRoutes(rg *gin.RouterGroup, ms portssvc.MemberSvcFacade, ics portssvc.InviteCodeSvcFacade, ss portssvc.StorageSvcFacade) {
	h := newMemberHandler(ms, ics, ss)

	members := rg.Group("/members")
	{
		members.GET("", h.listMembers)
		members.DELETE("/:userID", h.deleteMember)
	}

	codes := rg.Group("/invite-codes")
	{
		codes.GET("", h.listInviteCodes)
		codes.POST("", h.createInviteCode)
		codes.DELETE("/:inviteCodeID", h.deleteInviteCode)
	}

	rg.GET("/storage/usage", h.getStorageUsage)
}

// listMembers godoc
// @Summary List members
// @Tags members
// @Produce json
// @Success 200 {object} dto.ListUsersResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /members [get]
func (h *memberHandler) listMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	users, err := h.memberService.ListMembers(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to list members")
		return
	}
	c.JSON(http.StatusOK, dto.ToListUserResponse(users))
}

// deleteMember godoc
// @Summary Remove a member
// @Description Refused for the caller, for members who recorded transactions and for members tied to an invite code
// @Tags members
// @Param userID path string true "Member ID"
// @Success 204
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Member cannot be removed"
// @Failure 404 {object} map[string]string "Member not found"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /members/{userID} [delete]
func (h *memberHandler) deleteMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	targetID := c.Param("userID")
	logger = logger.With(slog.String("target_user_id", targetID), slog.String("actor_user_id", actorID))

	if err := h.memberService.DeleteMember(c.Request.Context(), targetID, actorID); err != nil {
		respondWithError(c, logger, err, "Failed to delete member")
		return
	}
	logger.Info("Member deleted")
	c.Status(http.StatusNoContent)
}

// listInviteCodes godoc
// @Summary List invite codes
// @Description Expired unused codes are purged first
// @Tags invite-codes
// @Produce json
// @Success 200 {array} dto.InviteCodeResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /invite-codes [get]
func (h *memberHandler) listInviteCodes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	codes, err := h.inviteCodeService.ListInviteCodes(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to list invite codes")
		return
	}
	c.JSON(http.StatusOK, dto.ToListInviteCodeResponse(codes))
}

// createInviteCode godoc
// @Summary Create an invite code
// @Tags invite-codes
// @Produce json
// @Success 201 {object} dto.InviteCodeResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /invite-codes [post]
func (h *memberHandler) createInviteCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	code, err := h.inviteCodeService.CreateInviteCode(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create invite code")
		return
	}
	logger.Info("Invite code created", slog.String("invite_code_id", code.InviteCodeID), slog.Time("expires_at", code.ExpiresAt))
	c.JSON(http.StatusCreated, dto.ToInviteCodeResponse(code))
}

// deleteInviteCode godoc
// @Summary Delete an invite code
// @Tags invite-codes
// @Param inviteCodeID path string true "Invite code ID"
// @Success 204
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Invite code not found"
// @Security BearerAuth
// @Router /invite-codes/{inviteCodeID} [delete]
func (h *memberHandler) deleteInviteCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if err := h.inviteCodeService.DeleteInviteCode(c.Request.Context(), c.Param("inviteCodeID")); err != nil {
		respondWithError(c, logger, err, "Failed to delete invite code")
		return
	}
	c.Status(http.StatusNoContent)
}

// getStorageUsage godoc
// @Summary Estimate database and receipt storage usage
// @Tags storage
// @Produce json
// @Success 200 {object} domain.StorageUsage
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /storage/usage [get]
func (h *memberHandler) getStorageUsage(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	usage, err := h.storageService.GetStorageUsage(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to compute storage usage")
		return
	}
	c.JSON(http.StatusOK, usage)
}
