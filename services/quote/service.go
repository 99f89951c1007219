package quote

import (
	"context"
	"errors"
	"time"

	"taskilo/database"
	"taskilo/database/repository"
	"taskilo/models"
	"taskilo/services/notification"
	"taskilo/services/payments"
	"taskilo/utils"

	"go.uber.org/zap"
)

// QuoteService runs the quote workflow from request to contact exchange.
type QuoteService interface {
	CreateQuote(ctx context.Context, caller Caller, req models.CreateQuoteRequest) (*models.Quote, error)
	GetQuote(ctx context.Context, caller Caller, quoteID string) (*models.Quote, error)
	RespondToQuote(ctx context.Context, caller Caller, quoteID string, req models.QuoteResponseRequest) (*models.Quote, error)
	AcceptQuote(ctx context.Context, caller Caller, quoteID string) (*models.Quote, error)
	CreatePaymentIntent(ctx context.Context, caller Caller, quoteID string) (*models.PaymentIntentResult, error)
	ConfirmPayment(ctx context.Context, caller Caller, quoteID, paymentIntentID string) (*models.PaymentConfirmationResult, error)
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
	ExchangeContacts(ctx context.Context, caller Caller, quoteID string) (*models.ContactExchangeResult, error)
	Reconcile(ctx context.Context) (*ReconcileResult, error)
}

// Caller identifies who performs an operation.
type Caller struct {
	ID     string
	Role   string
	System bool
}

// SystemCaller is used by webhooks and background jobs.
func SystemCaller() Caller {
	return Caller{System: true}
}

// Options carries the workflow settings taken from config.
type Options struct {
	StripeConfigured    bool
	StripeWebhookSecret string
	ProvisionRate       float64
	DefaultCurrency     string
	AutoExchange        bool
	ReconcileAfter      time.Duration
	ReconcileBatch      int
	PaymentLockTTL      time.Duration
}

// Service is the production QuoteService.
type Service struct {
	repos    *repository.Set
	gateway  payments.Gateway
	locker   utils.Locker
	enqueuer notification.Enqueuer
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the quote service. locker and enqueuer may be nil.
func NewService(
	repos *repository.Set,
	gateway payments.Gateway,
	locker utils.Locker,
	enqueuer notification.Enqueuer,
	opts Options,
	logger *zap.Logger,
) *Service {
	if opts.ReconcileBatch <= 0 {
		opts.ReconcileBatch = 100
	}
	if opts.PaymentLockTTL <= 0 {
		opts.PaymentLockTTL = 30 * time.Second
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "eur"
	}
	return &Service{
		repos:    repos,
		gateway:  gateway,
		locker:   locker,
		enqueuer: enqueuer,
		opts:     opts,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) loadQuote(ctx context.Context, quoteID string) (*models.Quote, error) {
	if quoteID == "" {
		return nil, utils.Validation("Angebots-ID fehlt")
	}
	q, err := s.repos.Quotes.GetByID(ctx, quoteID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, utils.NotFound("Angebot nicht gefunden")
	}
	if err != nil {
		return nil, utils.Internal("Angebot konnte nicht geladen werden", err)
	}
	return q, nil
}

func authorizeParticipant(q *models.Quote, caller Caller) error {
	if caller.System || q.IsParticipant(caller.ID) {
		return nil
	}
	return utils.Forbidden("Kein Zugriff auf dieses Angebot")
}

// displayNames looks up both parties' names. Lookup failures fall back to
// generic labels.
func (s *Service) displayNames(ctx context.Context, q *models.Quote) (customer, provider string) {
	customer, provider = (&models.User{}).DisplayName(), (&models.Company{}).DisplayName()

	if u, err := s.repos.Users.GetByID(ctx, q.CustomerID); err == nil {
		customer = u.DisplayName()
	} else {
		s.logger.Warn("Customer lookup failed", zap.String("quoteId", q.ID), zap.Error(err))
	}
	if c, err := s.repos.Companies.GetByID(ctx, q.ProviderID); err == nil {
		provider = c.DisplayName()
	} else {
		s.logger.Warn("Provider lookup failed", zap.String("quoteId", q.ID), zap.Error(err))
	}
	return customer, provider
}

func (s *Service) writeOutbox(ctx context.Context, notes []*models.Notification) error {
	for _, n := range notes {
		if err := s.repos.Notifications.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// enqueue schedules delivery of committed outbox entries. Failures are left
// to the outbox sweep.
func (s *Service) enqueue(ctx context.Context, notes []*models.Notification) {
	if s.enqueuer == nil {
		return
	}
	for _, n := range notes {
		if err := s.enqueuer.EnqueueDelivery(ctx, n.ID); err != nil {
			s.logger.Warn("Failed to enqueue notification, sweep will pick it up",
				zap.String("notificationId", n.ID),
				zap.Error(err),
			)
		}
	}
}

// asAppError passes AppErrors through and wraps everything else as internal.
func asAppError(err error, msg string) error {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return utils.Internal(msg, err)
}
