package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/club_ledger/internal/core/ports/services"
	"github.com/SscSPs/club_ledger/internal/dto"
	"github.com/SscSPs/club_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

const receiptFormField = "file"

type receiptHandler struct {
	receiptService portssvc.ReceiptSvcFacade
}

func registerReceiptRoutes(rg *gin.RouterGroup, rs portssvc.ReceiptSvcFacade) {
	h := &receiptHandler{receiptService: rs}
	rg.POST("/receipts", h.uploadReceipt)
}

// uploadReceipt godoc
// @Summary Upload a receipt image
// @Description Stores the image and returns the URL to put on a transaction
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt image"
// @Success 201 {object} dto.ReceiptResponse
// @Failure 400 {object} map[string]string "Missing file, not an image or too large"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Storage unavailable"
// @Security BearerAuth
// @Router /receipts [post]
func (h *receiptHandler) uploadReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	header, err := c.FormFile(receiptFormField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Multipart field 'file' is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		logger.Error("Failed to open uploaded receipt", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}
	defer file.Close()

	logger = logger.With(slog.String("filename", header.Filename), slog.Int64("size", header.Size))
	receipt, err := h.receiptService.UploadReceipt(c.Request.Context(), header.Filename, file, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to upload receipt")
		return
	}

	logger.Info("Receipt uploaded", slog.String("key", receipt.Key))
	c.JSON(http.StatusCreated, dto.ToReceiptResponse(receipt))
}
