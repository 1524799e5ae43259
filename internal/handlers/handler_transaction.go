package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/club_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/SscSPs/club_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests for ledger entries.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// registerTransactionRoutes registers routes related to ledger entries.
func registerTransactionRoutes(rg *gin.RouterGroup, ts portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(ts)

	txns := rg.Group("/transactions")
	{
		txns.GET("", h.listTransactions)
		txns.POST("", h.createTransaction)
		txns.GET("/:transactionID", h.getTransaction)
		txns.PUT("/:transactionID", h.updateTransaction)
		txns.DELETE("/:transactionID", h.deleteTransaction)
		txns.POST("/:transactionID/restore", h.restoreTransaction)
		txns.GET("/:transactionID/history", h.listTransactionHistory)
	}
}

// listTransactions godoc
// @Summary List ledger entries
// @Description Newest first, one page at a time. Pass nextToken from the previous page to continue.
// @Tags transactions
// @Produce json
// @Param fiscalYearID query string false "Fiscal year, defaults to the current one"
// @Param type query string false "income, expense or transfer"
// @Param accountID query string false "Account on either side of the entry"
// @Param month query string false "YYYY-MM"
// @Param includeDeleted query bool false "Include soft-deleted entries"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Opaque continuation token"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No fiscal year exists"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.transactionService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(page))
}

// createTransaction godoc
// @Summary Record a ledger entry
// @Description Writes the entry, its history row and the balance change in one database transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body dto.CreateTransactionRequest true "Entry"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or date outside the fiscal year"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No fiscal year exists"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("recorded_by", userID))
	logger.Info("Received request to record transaction", slog.String("type", string(req.Type)), slog.String("amount", req.Amount.String()))

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create transaction")
		return
	}

	logger.Info("Transaction recorded", slog.String("transaction_id", txn.TransactionID))
	trackTransaction(c, txn)
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getTransaction godoc
// @Summary Get a ledger entry
// @Tags transactions
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	txn, err := h.transactionService.GetTransaction(c.Request.Context(), c.Param("transactionID"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to get transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// updateTransaction godoc
// @Summary Edit a ledger entry
// @Description Applies the net balance change of the edit. Send expectedLastUpdatedAt to refuse stale edits.
// @Tags transactions
// @Accept json
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Param transaction body dto.UpdateTransactionRequest true "New state"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or date outside the fiscal year"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Deleted or changed by someone else"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /transactions/{transactionID} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID), slog.String("user_id", userID))

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), transactionID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update transaction")
		return
	}
	logger.Info("Transaction updated")
	trackTransaction(c, txn)
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// deleteTransaction godoc
// @Summary Soft-delete a ledger entry
// @Description Reverses the entry's balance effect. confirmName must equal the caller's display name.
// @Tags transactions
// @Accept json
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Param confirmation body dto.DeleteTransactionRequest true "Caller's display name"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Confirmation mismatch"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Already deleted"
// @Security BearerAuth
// @Router /transactions/{transactionID} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DeleteTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID), slog.String("user_id", userID))

	txn, err := h.transactionService.DeleteTransaction(c.Request.Context(), transactionID, req.ConfirmName, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to delete transaction")
		return
	}
	logger.Info("Transaction deleted")
	trackTransaction(c, txn)
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// restoreTransaction godoc
// @Summary Restore a soft-deleted ledger entry
// @Tags transactions
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Not deleted"
// @Security BearerAuth
// @Router /transactions/{transactionID}/restore [post]
func (h *transactionHandler) restoreTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	txn, err := h.transactionService.RestoreTransaction(c.Request.Context(), c.Param("transactionID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to restore transaction")
		return
	}
	trackTransaction(c, txn)
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// listTransactionHistory godoc
// @Summary List the history of a ledger entry
// @Tags transactions
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Success 200 {array} dto.HistoryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{transactionID}/history [get]
func (h *transactionHandler) listTransactionHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rows, err := h.transactionService.ListTransactionHistory(c.Request.Context(), c.Param("transactionID"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to list transaction history")
		return
	}
	c.JSON(http.StatusOK, dto.ToHistoryResponses(rows))
}

// trackTransaction tags the request's analytics event with the ledger entry it touched.
func trackTransaction(c *gin.Context, txn *domain.Transaction) {
	middleware.TrackProperty(c, "fiscalYearID", txn.FiscalYearID)
	middleware.TrackProperty(c, "type", string(txn.Type))
}
