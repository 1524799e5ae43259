package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/SscSPs/club_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// proposalHandler drives the fiscal year deletion vote.
type proposalHandler struct {
	proposalService portssvc.ProposalSvcFacade
	now             func() time.Time
}

func newProposalHandler(ps portssvc.ProposalSvcFacade) *proposalHandler {
	return &proposalHandler{proposalService: ps, now: time.Now}
}

// registerProposalRoutes registers routes related to deletion proposals.
func registerProposalRoutes(rg *gin.RouterGroup, ps portssvc.ProposalSvcFacade) {
	h := newProposalHandler(ps)

	proposals := rg.Group("/proposals")
	{
		proposals.GET("", h.listProposals)
		proposals.POST("", h.createProposal)
		proposals.GET("/:proposalID", h.getProposal)
		proposals.POST("/:proposalID/votes", h.castVote)
		proposals.POST("/:proposalID/cancel", h.cancelApproval)
		proposals.POST("/:proposalID/execute", h.executeProposal)
	}
}

// listProposals godoc
// @Summary List deletion proposals
// @Description Status reflects expiry as of the request
// @Tags proposals
// @Produce json
// @Param fiscalYearID query string false "Only proposals for this fiscal year"
// @Success 200 {array} dto.ProposalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /proposals [get]
func (h *proposalHandler) listProposals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListProposalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	proposals, err := h.proposalService.ListProposals(c.Request.Context(), params.FiscalYearID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list proposals")
		return
	}
	c.JSON(http.StatusOK, dto.ToListProposalResponse(proposals, h.now()))
}

// createProposal godoc
// @Summary Propose deleting a fiscal year
// @Description Opens a vote that needs a majority of members. A year can have only one active proposal.
// @Tags proposals
// @Accept json
// @Produce json
// @Param proposal body dto.CreateProposalRequest true "Fiscal year to delete"
// @Success 201 {object} dto.ProposalResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Fiscal year not found"
// @Failure 409 {object} map[string]string "An active proposal already exists"
// @Security BearerAuth
// @Router /proposals [post]
func (h *proposalHandler) createProposal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("fiscal_year_id", req.FiscalYearID), slog.String("proposed_by", userID))
	p, err := h.proposalService.ProposeDeletion(c.Request.Context(), req.FiscalYearID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create proposal")
		return
	}

	logger.Info("Deletion proposed", slog.String("proposal_id", p.ProposalID), slog.Int("required_approvals", p.RequiredApprovals))
	middleware.TrackProperty(c, "fiscalYearID", p.FiscalYearID)
	c.JSON(http.StatusCreated, dto.ToProposalResponse(p, h.now()))
}

// getProposal godoc
// @Summary Get a proposal with its votes
// @Tags proposals
// @Produce json
// @Param proposalID path string true "Proposal ID"
// @Success 200 {object} dto.ProposalDetailResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Proposal not found"
// @Security BearerAuth
// @Router /proposals/{proposalID} [get]
func (h *proposalHandler) getProposal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	detail, err := h.proposalService.GetProposal(c.Request.Context(), c.Param("proposalID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to get proposal")
		return
	}
	c.JSON(http.StatusOK, dto.ToProposalDetailResponse(detail, h.now()))
}

// castVote godoc
// @Summary Vote on a proposal
// @Description Records or replaces the caller's vote and returns the re-tallied proposal
// @Tags proposals
// @Accept json
// @Produce json
// @Param proposalID path string true "Proposal ID"
// @Param vote body dto.CastVoteRequest true "approve or reject"
// @Success 200 {object} dto.ProposalResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Proposal not found"
// @Failure 409 {object} map[string]string "Voting closed"
// @Security BearerAuth
// @Router /proposals/{proposalID}/votes [post]
func (h *proposalHandler) castVote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	proposalID := c.Param("proposalID")
	logger = logger.With(slog.String("proposal_id", proposalID), slog.String("voter", userID))

	p, err := h.proposalService.CastVote(c.Request.Context(), proposalID, req.Vote, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to cast vote")
		return
	}

	logger.Info("Vote recorded", slog.String("vote", string(req.Vote)), slog.String("status", string(p.Status)))
	middleware.TrackProperty(c, "fiscalYearID", p.FiscalYearID)
	middleware.TrackProperty(c, "vote", string(req.Vote))
	c.JSON(http.StatusOK, dto.ToProposalResponse(p, h.now()))
}

// cancelApproval godoc
// @Summary Return an approved proposal to pending
// @Tags proposals
// @Produce json
// @Param proposalID path string true "Proposal ID"
// @Success 200 {object} dto.ProposalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Proposal not found"
// @Failure 409 {object} map[string]string "Proposal is not approved"
// @Security BearerAuth
// @Router /proposals/{proposalID}/cancel [post]
func (h *proposalHandler) cancelApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	p, err := h.proposalService.CancelApproval(c.Request.Context(), c.Param("proposalID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to cancel approval")
		return
	}
	c.JSON(http.StatusOK, dto.ToProposalResponse(p, h.now()))
}

// executeProposal godoc
// @Summary Delete the fiscal year of an approved proposal
// @Description Removes the year with its transactions, history, categories and receipts. Another year is promoted to current when needed.
// @Tags proposals
// @Produce json
// @Param proposalID path string true "Proposal ID"
// @Success 200 {object} dto.ExecuteProposalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Proposal not found"
// @Failure 409 {object} map[string]string "Proposal is not approved"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /proposals/{proposalID}/execute [post]
func (h *proposalHandler) executeProposal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	proposalID := c.Param("proposalID")
	logger = logger.With(slog.String("proposal_id", proposalID), slog.String("executed_by", userID))

	p, result, err := h.proposalService.ExecuteProposal(c.Request.Context(), proposalID, userID)
	if err != nil && !(errors.Is(err, apperrors.ErrPartialFailure) && p != nil && result != nil) {
		respondWithError(c, logger, err, "Failed to execute proposal")
		return
	}

	resp := dto.ExecuteProposalResponse{Proposal: dto.ToProposalResponse(p, h.now()), Deletion: *result}
	if err != nil {
		logger.Error("Proposal executed with leftover receipts", slog.String("error", err.Error()))
		resp.Warning = receiptCleanupWarning
	}
	logger.Info("Proposal executed", slog.String("fiscal_year_id", result.FiscalYearID), slog.Int64("transactions_deleted", result.TransactionCount))
	middleware.TrackProperty(c, "fiscalYearID", result.FiscalYearID)
	middleware.TrackProperty(c, "transactionsDeleted", result.TransactionCount)
	c.JSON(http.StatusOK, resp)
}
