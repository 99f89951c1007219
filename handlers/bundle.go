package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Middleware applied per route group
	Auth      gin.HandlerFunc
	AdminAuth gin.HandlerFunc

	// Quote endpoints
	CreateQuoteHandler     gin.HandlerFunc
	GetQuoteHandler        gin.HandlerFunc
	RespondToQuoteHandler  gin.HandlerFunc
	AcceptQuoteHandler     gin.HandlerFunc
	QuotePaymentHandler    gin.HandlerFunc
	ContactExchangeHandler gin.HandlerFunc

	// Webhooks
	StripeWebhookHandler gin.HandlerFunc

	// Admin endpoints
	ListPendingTransfersHandler gin.HandlerFunc
	PayoutHandler               gin.HandlerFunc
	RetryTransfersHandler       gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}
