package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"taskilo/app"
	"taskilo/config"
	"taskilo/cron"
	"taskilo/handlers"
	"taskilo/middleware"
	"taskilo/routes"
	"taskilo/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("main: %v", err)
	}
	logger, err := utils.NewLogger(cfg)
	if err != nil {
		log.Fatalf("main: failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("main: failed to initialize", zap.Error(err))
	}
	defer a.Close(context.Background())

	signer, err := utils.NewTokenSigner(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("main: JWT_SECRET is required", zap.Error(err))
	}

	var redisClients []*redis.Client
	if a.Cache != nil {
		redisClients = append(redisClients, a.Cache)
	}
	monitor := utils.NewHealthMonitor(a.Store, redisClients, 30*time.Second)
	monitor.Start(ctx)

	var worker *cron.Worker
	if a.Queue != nil {
		worker = cron.NewWorker(cfg, a.Repos, a.Deliverer, a.Quotes, a.Queue, logger)
		if err := worker.Start(); err != nil {
			logger.Error("main: background worker not running", zap.Error(err))
			worker = nil
		}
	}

	router := gin.New()
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin, logger))

	quoteHandler := handlers.NewQuoteHandler(a.Quotes, logger)
	webhookHandler := handlers.NewWebhookHandler(a.Quotes, logger)
	transferHandler := handlers.NewTransferHandler(a.Transfers, logger)
	healthHandler := handlers.NewHealthHandler(monitor)

	handlerBundle := &handlers.HandlerBundle{
		Auth:      middleware.JWTAuthMiddleware(signer, logger),
		AdminAuth: middleware.AdminAuthMiddleware(cfg.AdminToken),

		CreateQuoteHandler:     quoteHandler.CreateQuoteHandler,
		GetQuoteHandler:        quoteHandler.GetQuoteHandler,
		RespondToQuoteHandler:  quoteHandler.RespondHandler,
		AcceptQuoteHandler:     quoteHandler.AcceptHandler,
		QuotePaymentHandler:    quoteHandler.PaymentHandler,
		ContactExchangeHandler: quoteHandler.ContactExchangeHandler,

		StripeWebhookHandler: webhookHandler.StripeWebhookHandler,

		ListPendingTransfersHandler: transferHandler.ListPendingHandler,
		PayoutHandler:               transferHandler.PayoutHandler,
		RetryTransfersHandler:       transferHandler.RetryHandler,

		HealthHandler: healthHandler.Health,
	}
	routes.RegisterRoutes(router, handlerBundle)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("main: server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}

	logger.Info("main: server stopped gracefully")
}
