package handlers

import (
	"io"
	"net/http"

	"taskilo/services/quote"
	"taskilo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stripe limits webhook payloads to well below this.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	Service quote.QuoteService
	Logger  *zap.Logger
}

func NewWebhookHandler(svc quote.QuoteService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Service: svc, Logger: logger}
}

// StripeWebhookHandler handles POST /api/webhooks/stripe.
func (h *WebhookHandler) StripeWebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.RespondError(c, h.Logger, utils.Validation("Webhook konnte nicht gelesen werden").WithDetails(err.Error()))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Service.HandleStripeWebhook(ctx, payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
