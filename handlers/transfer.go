package handlers

import (
	"net/http"
	"strconv"

	"taskilo/models"
	"taskilo/services/transfer"
	"taskilo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TransferHandler serves the operator endpoints for payouts.
type TransferHandler struct {
	Service transfer.TransferService
	Logger  *zap.Logger
}

func NewTransferHandler(svc transfer.TransferService, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{Service: svc, Logger: logger}
}

// ListPendingHandler handles GET /api/admin/transfers/pending.
func (h *TransferHandler) ListPendingHandler(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.RespondError(c, h.Logger, utils.Validation("Ungültiges limit").WithDetails(v))
			return
		}
		limit = n
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	transfers, err := h.Service.ListPending(ctx, limit)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transfers": transfers, "count": len(transfers)})
}

// PayoutHandler handles POST /api/admin/transfers.
func (h *TransferHandler) PayoutHandler(c *gin.Context) {
	var req models.PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, h.Logger, utils.Validation("Ungültige Anfrage").WithDetails(err.Error()))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.Service.Payout(ctx, req)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RetryHandler handles POST /api/admin/transfers/retry.
func (h *TransferHandler) RetryHandler(c *gin.Context) {
	var req models.RetryTransfersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, h.Logger, utils.Validation("transferIds fehlt").WithDetails(err.Error()))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	results, err := h.Service.Retry(ctx, req.TransferIDs)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"results":   results,
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})
}
