package routes

import (
	"time"

	"taskilo/handlers"
	"taskilo/middleware"
	"taskilo/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterQuoteRoutes registers the quote workflow endpoints.
func RegisterQuoteRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/quotes")
	{
		api.Use(hb.Auth)
		api.POST("", middleware.RequireRole(utils.RoleCustomer), hb.CreateQuoteHandler)
		api.GET("/:quoteId", hb.GetQuoteHandler)
		api.POST("/:quoteId/response", middleware.RequireRole(utils.RoleProvider), hb.RespondToQuoteHandler)
		api.POST("/:quoteId/accept", middleware.RequireRole(utils.RoleCustomer), hb.AcceptQuoteHandler)
		api.POST("/:quoteId/payment", hb.QuotePaymentHandler)
		api.POST("/:quoteId/contact-exchange", hb.ContactExchangeHandler)
	}
}

// RegisterWebhookRoutes registers provider callbacks. They authenticate by
// signature, not by token.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/webhooks/stripe", hb.StripeWebhookHandler)
}

// RegisterAdminRoutes sets up endpoints for operator tasks.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(hb.AdminAuth)
		adminGroup.GET("/transfers/pending", hb.ListPendingTransfersHandler)
		adminGroup.POST("/transfers", hb.PayoutHandler)
		adminGroup.POST("/transfers/retry", hb.RetryTransfersHandler)
	}
}

// RegisterHealthRoute registers the health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterWebhookRoutes(r, hb)
	RegisterQuoteRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
