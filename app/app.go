// Package app wires the stores, clients and services shared by the API
// server and the admin CLI.
package app

import (
	"context"
	"fmt"

	"taskilo/config"
	"taskilo/cron"
	"taskilo/database"
	"taskilo/database/repository"
	"taskilo/services/notification"
	"taskilo/services/payments"
	"taskilo/services/quote"
	"taskilo/services/tasks"
	"taskilo/services/transfer"
	"taskilo/utils"

	firebase "firebase.google.com/go/v4"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// App holds the wired dependencies of one process.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Firebase *firebase.App
	Store    database.Store
	Repos    *repository.Set
	Cache    *redis.Client
	Queue    *tasks.Queue

	Gateway   payments.Gateway
	Quotes    *quote.Service
	Transfers *transfer.Service
	Deliverer *notification.Deliverer
}

// New connects every dependency named in cfg. Redis is optional: without it
// the payment lock is skipped and deliveries are left to the outbox sweep.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	fb, err := utils.NewFirebaseApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Firebase = fb

	store, err := database.Open(ctx, cfg, fb, logger)
	if err != nil {
		return nil, fmt.Errorf("app: store: %w", err)
	}
	a.Store = store
	a.Repos = repository.NewSet(store)

	var locker utils.Locker
	var enqueuer notification.Enqueuer
	if cache, err := utils.NewCacheClient(ctx, cfg); err != nil {
		logger.Warn("Redis unavailable, running without payment lock and queue", zap.Error(err))
	} else {
		a.Cache = cache
		locker = utils.NewRedisLocker(cache)
		a.Queue = tasks.NewQueue(asynq.NewClient(cron.RedisOpt(cfg)), asynq.NewInspector(cron.RedisOpt(cfg)), cfg.NotificationMaxAttempts)
		enqueuer = a.Queue
	}

	if !cfg.StripeConfigured() {
		logger.Warn("STRIPE_SECRET_KEY not set, payment endpoints will answer with a configuration error")
	}
	a.Gateway = payments.NewStripeGateway(cfg.StripeSecretKey, logger)

	a.Quotes = quote.NewService(a.Repos, a.Gateway, locker, enqueuer, quote.Options{
		StripeConfigured:    cfg.StripeConfigured(),
		StripeWebhookSecret: cfg.StripeWebhookSecret,
		ProvisionRate:       cfg.ProvisionRate,
		DefaultCurrency:     cfg.DefaultCurrency,
		AutoExchange:        cfg.AutoExchangeContacts,
		ReconcileAfter:      cfg.ReconcileAfter,
	}, logger)
	a.Transfers = transfer.NewService(a.Repos, a.Gateway, cfg.StripeConfigured(), cfg.DefaultCurrency, logger)

	var push notification.PushSender
	if fb != nil {
		msgClient, err := fb.Messaging(ctx)
		if err != nil {
			logger.Warn("FCM unavailable, push notifications disabled", zap.Error(err))
		} else {
			push = notification.NewFCMSender(msgClient)
		}
	}
	var mail notification.MailSender
	if cfg.SendGridAPIKey != "" {
		mail = notification.NewSendGridSender(cfg.SendGridAPIKey, cfg.MailFromAddress, cfg.MailFromName)
	}
	a.Deliverer = notification.NewDeliverer(a.Repos, push, mail, cfg.NotificationMaxAttempts, logger)

	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close(ctx context.Context) {
	if a.Queue != nil {
		if err := a.Queue.Close(); err != nil {
			a.Logger.Warn("Failed to close queue client", zap.Error(err))
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn("Failed to close Redis", zap.Error(err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(ctx); err != nil {
			a.Logger.Warn("Failed to close store", zap.Error(err))
		}
	}
}
