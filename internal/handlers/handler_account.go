package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/SscSPs/club_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the club's two accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.POST("/reconcile", h.reconcileBalances)
	}
}

// listAccounts godoc
// @Summary List accounts
// @Description Retrieves the cash and bank accounts with their persisted balances
// @Tags accounts
// @Produce  json
// @Success 200 {array} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accounts, err := h.accountService.ListAccounts(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to list accounts")
		return
	}

	logger.Info("Accounts listed successfully", slog.Int("count", len(accounts)))
	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// reconcileBalances godoc
// @Summary Reconcile account balances
// @Description Rewrites each persisted balance to the value derived from the current fiscal year and reports the corrected drift
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.ReconcileResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No fiscal year exists"
// @Failure 500 {object} map[string]string "Failed to reconcile balances"
// @Security BearerAuth
// @Router /accounts/reconcile [post]
func (h *accountHandler) reconcileBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	result, err := h.accountService.ReconcileBalances(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reconcile balances")
		return
	}

	logger.Info("Balances reconciled", slog.String("fiscal_year_id", result.FiscalYearID), slog.Int("corrected", len(result.Corrected)))
	c.JSON(http.StatusOK, dto.ToReconcileResponse(result))
}
