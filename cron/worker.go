package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskilo/config"
	"taskilo/database/repository"
	"taskilo/services/notification"
	"taskilo/services/quote"
	"taskilo/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	sweepSpec     = "@every 1m"
	reconcileSpec = "@every 15m"
	sweepAge      = time.Minute
	sweepBatch    = 200
)

type deliverer interface {
	Deliver(ctx context.Context, id string) error
}

type reconciler interface {
	Reconcile(ctx context.Context) (*quote.ReconcileResult, error)
}

// Worker runs the asynq server for outbox delivery and the scheduler for the
// periodic sweep and reconciliation.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    *zap.Logger
}

// RedisOpt returns the asynq connection for the queue database.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}

func NewWorker(
	cfg *config.Config,
	repos *repository.Set,
	d deliverer,
	r reconciler,
	enq notification.Enqueuer,
	logger *zap.Logger,
) *Worker {
	redisOpt := RedisOpt(cfg)
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues: map[string]int{
			tasks.DefaultQueue: 1,
		},
		Logger: logger.Sugar(),
	})
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   logger.Sugar(),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeDeliverNotification, handleDeliver(d, logger))
	mux.HandleFunc(tasks.TypeSweepOutbox, handleSweep(repos, enq, logger))
	mux.HandleFunc(tasks.TypeReconcileQuotes, handleReconcile(r, logger))

	return &Worker{server: srv, scheduler: scheduler, mux: mux, logger: logger}
}

// Start starts the server and registers the periodic tasks. Startup is
// retried a few times while Redis comes up.
func (w *Worker) Start() error {
	const maxAttempts = 5

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = w.server.Start(w.mux); err == nil {
			break
		}
		w.logger.Warn("Worker failed to start", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < maxAttempts {
			time.Sleep(time.Duration(attempt*2) * time.Second)
		}
	}
	if err != nil {
		return fmt.Errorf("worker: %w", err)
	}

	sweep, sweepOpts := tasks.NewSweepTask()
	if _, err := w.scheduler.Register(sweepSpec, sweep, sweepOpts...); err != nil {
		return fmt.Errorf("worker: register sweep: %w", err)
	}
	reconcile, reconcileOpts := tasks.NewReconcileTask()
	if _, err := w.scheduler.Register(reconcileSpec, reconcile, reconcileOpts...); err != nil {
		return fmt.Errorf("worker: register reconcile: %w", err)
	}
	if err := w.scheduler.Start(); err != nil {
		return fmt.Errorf("worker: scheduler: %w", err)
	}

	w.logger.Info("Worker started")
	return nil
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
	w.logger.Info("Worker stopped")
}

func handleDeliver(d deliverer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseDeliverPayload(task)
		if err != nil {
			logger.Error("Dropping notification task", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return d.Deliver(ctx, p.NotificationID)
	}
}

func handleSweep(repos *repository.Set, enq notification.Enqueuer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		res := notification.Sweep(ctx, repos, enq, time.Now().UTC().Add(-sweepAge), sweepBatch)
		if res.Enqueued > 0 {
			logger.Info("Outbox sweep re-enqueued notifications", zap.Int("count", res.Enqueued))
		}
		if res.Err != nil {
			logger.Warn("Outbox sweep incomplete", zap.Error(res.Err))
		}
		return res.Err
	}
}

func handleReconcile(r reconciler, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		_, err := r.Reconcile(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Reconciliation finished with errors", zap.Error(err))
		}
		return err
	}
}
