package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type systemHistoryHandler struct {
	systemHistoryService portssvc.SystemHistorySvcFacade
}

func registerSystemHistoryRoutes(rg *gin.RouterGroup, svc portssvc.SystemHistorySvcFacade) {
	h := &systemHistoryHandler{systemHistoryService: svc}
	rg.GET("/system-history", h.listSystemHistory)
}

type listSystemHistoryParams struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// listSystemHistory godoc
// @Summary List club-wide audit entries
// @Description Newest first. Covers proposal creation and execution, direct fiscal year deletion and balance reconciliation.
// @Tags system-history
// @Produce json
// @Param limit query int false "Maximum entries" default(100)
// @Success 200 {array} domain.SystemHistory
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /system-history [get]
func (h *systemHistoryHandler) listSystemHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params listSystemHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	entries, err := h.systemHistoryService.ListSystemHistory(c.Request.Context(), params.Limit)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list system history")
		return
	}
	c.JSON(http.StatusOK, entries)
}
