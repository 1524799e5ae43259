package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/club_ledger/internal/apperrors"
	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/SscSPs/club_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

const receiptCleanupWarning = "The fiscal year was deleted but some receipt images could not be removed."

// fiscalYearHandler handles fiscal years and the resources scoped to them.
type fiscalYearHandler struct {
	fiscalYearService  portssvc.FiscalYearSvcFacade
	categoryService    portssvc.CategorySvcFacade
	transactionService portssvc.TransactionSvcFacade
}

func newFiscalYearHandler(fys portssvc.FiscalYearSvcFacade, cs portssvc.CategorySvcFacade, ts portssvc.TransactionSvcFacade) *fiscalYearHandler {
	return &fiscalYearHandler{
		fiscalYearService:  fys,
		categoryService:    cs,
		transactionService: ts,
	}
}

// registerFiscalYearRoutes registers fiscal year routes together with their categories and history.
func registerFiscalYearRoutes(rg *gin.RouterGroup, fys portssvc.FiscalYearSvcFacade, cs portssvc.CategorySvcFacade, ts portssvc.TransactionSvcFacade) {
	h := newFiscalYearHandler(fys, cs, ts)

	years := rg.Group("/fiscal-years")
	{
		years.GET("", h.listFiscalYears)
		years.POST("", h.createFiscalYear)
		years.GET("/current", h.getCurrentFiscalYear)

		year := years.Group("/:fiscalYearID")
		{
			year.GET("", h.getFiscalYear)
			year.PUT("", h.updateFiscalYear)
			year.DELETE("", h.deleteFiscalYear)
			year.POST("/activate", h.activateFiscalYear)
			year.GET("/summary", h.getFiscalYearSummary)
			year.GET("/history", h.listFiscalYearHistory)

			year.GET("/categories", h.listCategories)
			year.POST("/categories", h.createCategory)
			year.PUT("/categories/:categoryID", h.renameCategory)
			year.DELETE("/categories/:categoryID", h.deleteCategory)
		}
	}
}

// listFiscalYears godoc
// @Summary List fiscal years
// @Description Newest start date first
// @Tags fiscal-years
// @Produce json
// @Success 200 {array} dto.FiscalYearResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /fiscal-years [get]
func (h *fiscalYearHandler) listFiscalYears(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	years, err := h.fiscalYearService.ListFiscalYears(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to list fiscal years")
		return
	}
	c.JSON(http.StatusOK, dto.ToListFiscalYearResponse(years))
}

// createFiscalYear godoc
// @Summary Open a fiscal year
// @Description Creates a fiscal year with starting balances and seeds its categories. The first year becomes current.
// @Tags fiscal-years
// @Accept json
// @Produce json
// @Param fiscalYear body dto.CreateFiscalYearRequest true "Fiscal year details"
// @Success 201 {object} dto.FiscalYearResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Category source year not found"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /fiscal-years [post]
func (h *fiscalYearHandler) createFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateFiscalYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateFiscalYear", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("creator_user_id", userID))
	logger.Info("Received request to create fiscal year", slog.String("name", req.Name))

	fy, err := h.fiscalYearService.CreateFiscalYear(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create fiscal year")
		return
	}

	logger.Info("Fiscal year created", slog.String("fiscal_year_id", fy.FiscalYearID), slog.Bool("is_current", fy.IsCurrent))
	middleware.TrackProperty(c, "fiscalYearID", fy.FiscalYearID)
	c.JSON(http.StatusCreated, dto.ToFiscalYearResponse(fy))
}

// getCurrentFiscalYear godoc
// @Summary Get the current fiscal year
// @Tags fiscal-years
// @Produce json
// @Success 200 {object} dto.FiscalYearResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No fiscal year exists"
// @Security BearerAuth
// @Router /fiscal-years/current [get]
func (h *fiscalYearHandler) getCurrentFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fy, err := h.fiscalYearService.GetCurrentFiscalYear(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to get current fiscal year")
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(fy))
}

// getFiscalYear godoc
// @Summary Get a fiscal year
// @Tags fiscal-years
// @Produce json
// @Param fiscalYearID path string true "Fiscal year ID"
// @Success 200 {object} dto.FiscalYearResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Fiscal year not found"
// @Security BearerAuth
// @Router /fiscal-years/{fiscalYearID} [get]
func (h *fiscalYearHandler) getFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fy, err := h.fiscalYearService.GetFiscalYear(c.Request.Context(), c.Param("fiscalYearID"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to get fiscal year")
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(fy))
}

// updateFiscalYear godoc
// @Summary Update a fiscal year
// @Description Changes name, dates or starting balances. Existing transactions are not revalidated against new dates.
// @Tags fiscal-years
// @Accept json
// @Produce json
// @Param fiscalYearID path string true "Fiscal year ID"
// @Param fiscalYear body dto.UpdateFiscalYearRequest true "Fields to change"
// @Success 200 {object} dto.FiscalYearResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Fiscal year not found"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /fiscal-years/{fiscalYearID} [put]
func (h *fiscalYearHandler) updateFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateFiscalYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	fiscalYearID := c.Param("fiscalYearID")
	logger = logger.With(slog.String("fiscal_year_id", fiscalYearID))

	fy, err := h.fiscalYearService.UpdateFiscalYear(c.Request.Context(), fiscalYearID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update fiscal year")
		return
	}
	logger.Info("Fiscal year updated")
	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(fy))
}

// deleteFiscalYear godoc
// @Summary Delete a fiscal year directly
// @Description Legacy path that bypasses the deletion vote. Disabled unless ALLOW_DIRECT_FISCAL_YEAR_DELETE is set.
// @Tags fiscal-years
// @Accept json
// @Produce json
// @Param fiscalYearID path string true "Fiscal year ID"
// @Param confirmation body dto.DeleteFiscalYearRequest true "Caller's display name"
// @Success 200 {object} dto.DeleteFiscalYearResponse
// @Failure 400 {object} map[string]string "Confirmation mismatch"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Direct deletion disabled"
// @Failure 404 {object} map[string]string "Fiscal year not found"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /fiscal-years/{fiscalYearID} [delete]
func (h *fiscalYearHandler) deleteFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DeleteFiscalYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	fiscalYearID := c.Param("fiscalYearID")
	logger = logger.With(slog.String("fiscal_year_id", fiscalYearID), slog.String("user_id", userID))
	logger.Info("Received request to delete fiscal year directly")

	result, err := h.fiscalYearService.DeleteFiscalYearDirect(c.Request.Context(), fiscalYearID, req.ConfirmName, userID)
	if err != nil && !(errors.Is(err, apperrors.ErrPartialFailure) && result != nil) {
		respondWithError(c, logger, err, "Failed to delete fiscal year")
		return
	}

	resp := dto.DeleteFiscalYearResponse{Deletion: *result}
	if err != nil {
		logger.Error("Fiscal year deleted with leftover receipts", slog.String("error", err.Error()))
		resp.Warning = receiptCleanupWarning
	}
	c.JSON(http.StatusOK, resp)
}

// activateFiscalYear godoc
// @Summary Make a fiscal year current
// @Description Moves the current flag and rebases account balances onto the year.
// @Tags fiscal-years
// @Produce json
// @Param fiscalYearID path string true "Fiscal year ID"
// @Success 200 {object} dto.FiscalYearResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Fiscal year not found"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /fiscal-years/{fiscalYearID}/activate [post]
func (h *fiscalYearHandler) activateFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	fy, err := h.fiscalYearService.SetCurrentFiscalYear(c.Request.Context(), c.Param("fiscalYearID"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to set current fiscal year")
		return
	}
	logger.Info("Current fiscal year changed", slog.String("fiscal_year_id", fy.FiscalYearID))
	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(fy))
}

// getFiscalYearSummary godoc
// @Summary Get a fiscal year balance sheet
// @Tags fiscal-years
// @Produce json
// @Param fiscalYearID path string true "Fiscal year ID"
// @Success 200 {object} dto.FiscalYearSummaryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Fiscal year not found"
// @Security BearerAuth
// @Router /fiscal-years/{fiscalYearID}/summary [get]
func (h *fiscalYearHandler) getFiscalYearSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	summary, err := h.fiscalYearService.GetFiscalYearSummary(c.Request.Context(), c.Param("fiscalYearID"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to compute fiscal year summary")
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalYearSummaryResponse(summary))
}

type historyParams struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// listFiscalYearHistory godoc
// @Summary List the ledger history of a fiscal year
// @Tags fiscal-years
// @Produce json
// @Param fiscalYearID path string true "Fiscal year ID"
// @Param limit query int false "Maximum rows" default(100)
// @Success 200 {array} dto.HistoryResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Fiscal year not found"
// @Security BearerAuth
// @Router /fiscal-years/{fiscalYearID}/history [get]
func (h *fiscalYearHandler) listFiscalYearHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params historyParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	rows, err := h.transactionService.ListFiscalYearHistory(c.Request.Context(), c.Param("fiscalYearID"), params.Limit)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list fiscal year history")
		return
	}
	c.JSON(http.StatusOK, dto.ToHistoryResponses(rows))
}

// listCategories godoc
// @Summary List categories of a fiscal year
// @Tags categories
// @Produce json
// @Param fiscalYearID path string true "Fiscal year ID"
// @Param type query string false "income or expense"
// @Success 200 {array} dto.CategoryResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /fiscal-years/{fiscalYearID}/categories [get]
func (h *fiscalYearHandler) listCategories(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListCategoriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	categories, err := h.categoryService.ListCategories(c.Request.Context(), c.Param("fiscalYearID"), params.Type)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCategoryResponse(categories))
}

// createCategory godoc
// @Summary Add a category
// @Description Appends the category after the last one of the same type
// @Tags categories
// @Accept json
// @Produce json
// @Param fiscalYearID path string true "Fiscal year ID"
// @Param category body dto.CreateCategoryRequest true "Category"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Fiscal year not found"
// @Failure 409 {object} map[string]string "Category already exists"
// @Security BearerAuth
// @Router /fiscal-years/{fiscalYearID}/categories [post]
func (h *fiscalYearHandler) createCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), c.Param("fiscalYearID"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCategoryResponse(category))
}

// renameCategory godoc
// @Summary Rename a category
// @Tags categories
// @Accept json
// @Produce json
// @Param fiscalYearID path string true "Fiscal year ID"
// @Param categoryID path string true "Category ID"
// @Param category body dto.RenameCategoryRequest true "New name"
// @Success 200 {object} dto.CategoryResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Category not found"
// @Failure 409 {object} map[string]string "Name taken"
// @Security BearerAuth
// @Router /fiscal-years/{fiscalYearID}/categories/{categoryID} [put]
func (h *fiscalYearHandler) renameCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	category, err := h.categoryService.RenameCategory(c.Request.Context(), c.Param("fiscalYearID"), c.Param("categoryID"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to rename category")
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponse(category))
}

// deleteCategory godoc
// @Summary Delete a category
// @Description Transactions keep the category name they were recorded with
// @Tags categories
// @Param fiscalYearID path string true "Fiscal year ID"
// @Param categoryID path string true "Category ID"
// @Success 204
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Category not found"
// @Security BearerAuth
// @Router /fiscal-years/{fiscalYearID}/categories/{categoryID} [delete]
func (h *fiscalYearHandler) deleteCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if err := h.categoryService.DeleteCategory(c.Request.Context(), c.Param("fiscalYearID"), c.Param("categoryID")); err != nil {
		respondWithError(c, logger, err, "Failed to delete category")
		return
	}
	c.Status(http.StatusNoContent)
}
