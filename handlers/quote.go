package handlers

import (
	"context"
	"net/http"
	"time"

	"taskilo/middleware"
	"taskilo/models"
	"taskilo/services/quote"
	"taskilo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

// QuoteHandler serves the quote workflow endpoints.
type QuoteHandler struct {
	Service quote.QuoteService
	Logger  *zap.Logger
}

func NewQuoteHandler(svc quote.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{Service: svc, Logger: logger}
}

func callerFrom(c *gin.Context) quote.Caller {
	id, role := middleware.Caller(c)
	return quote.Caller{ID: id, Role: role}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func (h *QuoteHandler) bindError(c *gin.Context, err error) {
	utils.RespondError(c, h.Logger, utils.Validation("Ungültige Anfrage").WithDetails(err.Error()))
}

// CreateQuoteHandler handles POST /api/quotes.
func (h *QuoteHandler) CreateQuoteHandler(c *gin.Context) {
	var req models.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	q, err := h.Service.CreateQuote(ctx, callerFrom(c), req)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "quote": q})
}

// GetQuoteHandler handles GET /api/quotes/:quoteId.
func (h *QuoteHandler) GetQuoteHandler(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	q, err := h.Service.GetQuote(ctx, callerFrom(c), c.Param("quoteId"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "quote": q})
}

// RespondHandler handles POST /api/quotes/:quoteId/response.
func (h *QuoteHandler) RespondHandler(c *gin.Context) {
	var req models.QuoteResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	q, err := h.Service.RespondToQuote(ctx, callerFrom(c), c.Param("quoteId"), req)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "quote": q})
}

// AcceptHandler handles POST /api/quotes/:quoteId/accept.
func (h *QuoteHandler) AcceptHandler(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	q, err := h.Service.AcceptQuote(ctx, callerFrom(c), c.Param("quoteId"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "quote": q})
}

// PaymentHandler handles POST /api/quotes/:quoteId/payment and dispatches on
// the "action" field.
func (h *QuoteHandler) PaymentHandler(c *gin.Context) {
	var req models.QuotePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	quoteID := c.Param("quoteId")

	switch req.Action {
	case models.PaymentActionCreateIntent:
		res, err := h.Service.CreatePaymentIntent(ctx, callerFrom(c), quoteID)
		if err != nil {
			utils.RespondError(c, h.Logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":              true,
			"clientSecret":         res.ClientSecret,
			"paymentIntentId":      res.PaymentIntentID,
			"provisionAmount":      res.ProvisionAmount,
			"provisionAmountCents": res.ProvisionAmountCents,
			"currency":             res.Currency,
			"reused":               res.Reused,
		})

	case models.PaymentActionConfirm:
		res, err := h.Service.ConfirmPayment(ctx, callerFrom(c), quoteID, req.PaymentIntentID)
		if err != nil {
			utils.RespondError(c, h.Logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":          true,
			"quoteId":          res.QuoteID,
			"status":           res.Status,
			"readyForExchange": res.ReadyForExchange,
			"alreadyPaid":      res.AlreadyPaid,
		})

	default:
		utils.RespondError(c, h.Logger, utils.Validation("Unbekannte Aktion").WithDetails(req.Action))
	}
}

// ContactExchangeHandler handles POST /api/quotes/:quoteId/contact-exchange.
func (h *QuoteHandler) ContactExchangeHandler(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.Service.ExchangeContacts(ctx, callerFrom(c), c.Param("quoteId"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"quote":            res.Quote,
		"alreadyExchanged": res.AlreadyExchanged,
	})
}
