package quote

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"taskilo/models"
	"taskilo/services/notification"
	"taskilo/services/payments"
	"taskilo/utils"

	"go.uber.org/zap"
)

const paymentTypeQuoteProvision = "quote_provision"

func errStripeMissing() error {
	return utils.ConfigError("Stripe-Konfiguration fehlt")
}

// CreatePaymentIntent creates (or reuses) the Stripe payment intent for the
// provision of an accepted quote.
func (s *Service) CreatePaymentIntent(ctx context.Context, caller Caller, quoteID string) (*models.PaymentIntentResult, error) {
	if !s.opts.StripeConfigured {
		return nil, errStripeMissing()
	}

	q, err := s.loadQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if err := authorizeParticipant(q, caller); err != nil {
		return nil, err
	}
	if q.Status != models.QuoteStatusAccepted {
		return nil, utils.Validation("Angebot muss angenommen sein, bevor die Provision bezahlt werden kann").
			WithDetails("status: " + string(q.Status))
	}
	if q.TotalAmount() <= 0 {
		return nil, utils.Validation("Ungültiger Angebotsbetrag")
	}

	provision, err := payments.ComputeProvision(q.TotalAmount(), s.opts.ProvisionRate)
	if err != nil {
		return nil, utils.Validation("Provision konnte nicht berechnet werden").WithDetails(err.Error())
	}

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, "quote-payment:"+q.ID, s.opts.PaymentLockTTL)
		switch {
		case err != nil:
			// The idempotency key still protects against duplicates.
			s.logger.Warn("Payment lock unavailable", zap.String("quoteId", q.ID), zap.Error(err))
		case !ok:
			return nil, utils.Conflict("Die Zahlung für dieses Angebot wird bereits erstellt")
		default:
			defer release()
		}
	}

	currency := s.opts.DefaultCurrency
	if q.Response != nil && q.Response.Currency != "" {
		currency = q.Response.Currency
	}

	idempotencyKey := fmt.Sprintf("quote-%s-provision-%d", q.ID, provision.Cents)
	if q.Payment != nil && q.Payment.PaymentIntentID != "" && q.Payment.ProvisionAmountCents == provision.Cents {
		existing, err := s.gateway.GetPaymentIntent(ctx, q.Payment.PaymentIntentID)
		switch {
		case err != nil:
			s.logger.Warn("Could not load existing payment intent",
				zap.String("quoteId", q.ID),
				zap.String("paymentIntentId", q.Payment.PaymentIntentID),
				zap.Error(err),
			)
		case existing.Status != payments.IntentStatusCanceled:
			return &models.PaymentIntentResult{
				ClientSecret:         existing.ClientSecret,
				PaymentIntentID:      existing.ID,
				ProvisionAmount:      provision.AmountFloat(),
				ProvisionAmountCents: provision.Cents,
				Currency:             currency,
				Reused:               true,
			}, nil
		default:
			// A canceled intent keeps its idempotency key for 24h.
			idempotencyKey += "-after-" + existing.ID
		}
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, payments.IntentRequest{
		Amount:      provision.Cents,
		Currency:    currency,
		Description: fmt.Sprintf("Taskilo Provision für Angebot %s", q.ID),
		Metadata: map[string]string{
			"quoteId":       q.ID,
			"customerId":    q.CustomerID,
			"providerId":    q.ProviderID,
			"provisionRate": strconv.FormatFloat(provision.RateFloat(), 'f', -1, 64),
			"type":          paymentTypeQuoteProvision,
		},
		IdempotencyKey: idempotencyKey,
	})
	if errors.Is(err, payments.ErrNotConfigured) {
		return nil, errStripeMissing()
	}
	if err != nil {
		return nil, utils.Upstream("Fehler beim Erstellen der Zahlung", payments.ProviderMessage(err), err)
	}

	payment := models.QuotePayment{
		PaymentIntentID:      intent.ID,
		ProvisionAmount:      provision.AmountFloat(),
		ProvisionAmountCents: provision.Cents,
		ProvisionRate:        provision.RateFloat(),
		ProvisionStatus:      models.ProvisionStatusPending,
		Currency:             currency,
		CreatedAt:            s.now(),
	}
	if err := s.repos.Quotes.UpdateFields(ctx, q.ID, map[string]any{"payment": payment}); err != nil {
		return nil, utils.Internal("Zahlung konnte nicht gespeichert werden", err)
	}

	s.logger.Info("Payment intent created",
		zap.String("quoteId", q.ID),
		zap.String("paymentIntentId", intent.ID),
		zap.Int64("provisionAmountCents", provision.Cents),
	)

	return &models.PaymentIntentResult{
		ClientSecret:         intent.ClientSecret,
		PaymentIntentID:      intent.ID,
		ProvisionAmount:      provision.AmountFloat(),
		ProvisionAmountCents: provision.Cents,
		Currency:             currency,
	}, nil
}

// ConfirmPayment checks the intent with Stripe and marks the quote paid. The
// status change and the outbox entries are written in one transaction.
func (s *Service) ConfirmPayment(ctx context.Context, caller Caller, quoteID, paymentIntentID string) (*models.PaymentConfirmationResult, error) {
	if !s.opts.StripeConfigured {
		return nil, errStripeMissing()
	}
	if paymentIntentID == "" {
		return nil, utils.Validation("paymentIntentId fehlt")
	}

	q, err := s.loadQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if err := authorizeParticipant(q, caller); err != nil {
		return nil, err
	}

	storedIntent := ""
	if q.Payment != nil {
		storedIntent = q.Payment.PaymentIntentID
	}
	if storedIntent != paymentIntentID {
		return nil, utils.Validation("Payment Intent gehört nicht zu diesem Angebot")
	}
	if q.ProvisionPaid() {
		return &models.PaymentConfirmationResult{
			QuoteID:          q.ID,
			Status:           q.Status,
			ReadyForExchange: q.ReadyForExchange,
			AlreadyPaid:      true,
		}, nil
	}

	intent, err := s.gateway.GetPaymentIntent(ctx, paymentIntentID)
	if errors.Is(err, payments.ErrNotConfigured) {
		return nil, errStripeMissing()
	}
	if err != nil {
		return nil, utils.Upstream("Fehler beim Abrufen der Zahlung", payments.ProviderMessage(err), err)
	}
	if intent.Status != payments.IntentStatusSucceeded {
		return nil, utils.Validation("Zahlung wurde nicht erfolgreich abgeschlossen").WithDetails("status: " + intent.Status)
	}
	if id := intent.Metadata["quoteId"]; id != "" && id != q.ID {
		return nil, utils.Validation("Payment Intent gehört nicht zu diesem Angebot")
	}

	customerName, providerName := s.displayNames(ctx, q)

	result := &models.PaymentConfirmationResult{QuoteID: q.ID}
	var notes []*models.Notification
	err = s.repos.Store.RunTransaction(ctx, func(ctx context.Context) error {
		notes = nil
		cur, err := s.loadQuote(ctx, quoteID)
		if err != nil {
			return err
		}
		if cur.ProvisionPaid() {
			result.Status = cur.Status
			result.ReadyForExchange = cur.ReadyForExchange
			result.AlreadyPaid = true
			return nil
		}

		next, err := transition(cur, triggerPay)
		if err != nil {
			return utils.Conflict("Angebot kann nicht als bezahlt markiert werden").WithDetails("status: " + string(cur.Status))
		}

		now := s.now()
		if err := s.repos.Quotes.UpdateFields(ctx, cur.ID, map[string]any{
			"status":                  next,
			"payment.provisionStatus": models.ProvisionStatusPaid,
			"payment.paidAt":          now,
			"readyForExchange":        true,
			"updatedAt":               now,
		}); err != nil {
			return err
		}

		notes = notification.PaymentConfirmed(cur, customerName, providerName)
		if err := s.writeOutbox(ctx, notes); err != nil {
			return err
		}

		result.Status = next
		result.ReadyForExchange = true
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Zahlung konnte nicht bestätigt werden")
	}
	if result.AlreadyPaid {
		return result, nil
	}

	s.logger.Info("Provision paid",
		zap.String("quoteId", q.ID),
		zap.String("paymentIntentId", paymentIntentID),
	)
	s.enqueue(ctx, notes)

	if s.opts.AutoExchange {
		ex, err := s.exchange(ctx, q.ID)
		if err != nil {
			s.logger.Warn("Automatic contact exchange failed, reconciler will retry", zap.String("quoteId", q.ID), zap.Error(err))
		} else {
			result.Status = ex.Quote.Status
		}
	}
	return result, nil
}

// HandleStripeWebhook confirms quotes from payment_intent.succeeded events.
// Events for unknown or unrelated intents are acknowledged and ignored.
func (s *Service) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := payments.ParseWebhook(payload, signature, s.opts.StripeWebhookSecret)
	if errors.Is(err, payments.ErrNotConfigured) {
		return errStripeMissing()
	}
	if err != nil {
		return utils.Validation("Ungültige Webhook-Signatur").WithDetails(err.Error())
	}

	if event.Type != payments.EventPaymentIntentSucceeded || event.Intent == nil {
		s.logger.Debug("Ignoring Stripe event", zap.String("eventId", event.ID), zap.String("type", event.Type))
		return nil
	}
	if event.Intent.Metadata["type"] != paymentTypeQuoteProvision || event.Intent.Metadata["quoteId"] == "" {
		return nil
	}

	quoteID := event.Intent.Metadata["quoteId"]
	res, err := s.ConfirmPayment(ctx, SystemCaller(), quoteID, event.Intent.ID)
	if utils.IsKind(err, utils.KindValidation) || utils.IsKind(err, utils.KindNotFound) {
		s.logger.Warn("Stripe event does not match a payable quote",
			zap.String("eventId", event.ID),
			zap.String("quoteId", quoteID),
			zap.Error(err),
		)
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info("Stripe webhook processed",
		zap.String("eventId", event.ID),
		zap.String("quoteId", quoteID),
		zap.Bool("alreadyPaid", res.AlreadyPaid),
	)
	return nil
}
