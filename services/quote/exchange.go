package quote

import (
	"context"
	"errors"

	"taskilo/database"
	"taskilo/models"
	"taskilo/services/notification"
	"taskilo/utils"

	"go.uber.org/zap"
)

// ExchangeContacts reveals both parties' contact details on a paid quote.
// Calling it again after completion is a no-op.
func (s *Service) ExchangeContacts(ctx context.Context, caller Caller, quoteID string) (*models.ContactExchangeResult, error) {
	q, err := s.loadQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if err := authorizeParticipant(q, caller); err != nil {
		return nil, err
	}
	return s.exchange(ctx, quoteID)
}

func (s *Service) exchange(ctx context.Context, quoteID string) (*models.ContactExchangeResult, error) {
	result := &models.ContactExchangeResult{}
	var notes []*models.Notification

	err := s.repos.Store.RunTransaction(ctx, func(ctx context.Context) error {
		notes = nil
		q, err := s.loadQuote(ctx, quoteID)
		if err != nil {
			return err
		}
		if q.Status == models.QuoteStatusContactsExchanged {
			result.Quote = *q
			result.AlreadyExchanged = true
			return nil
		}
		if q.Status != models.QuoteStatusPaid || !q.ProvisionPaid() {
			return utils.Validation("Kontaktaustausch ist erst nach bezahlter Provision möglich").
				WithDetails("status: " + string(q.Status))
		}

		customer, err := s.repos.Users.GetByID(ctx, q.CustomerID)
		if errors.Is(err, database.ErrNotFound) {
			return utils.NotFound("Kunde nicht gefunden")
		}
		if err != nil {
			return err
		}
		company, err := s.repos.Companies.GetByID(ctx, q.ProviderID)
		if errors.Is(err, database.ErrNotFound) {
			return utils.NotFound("Anbieter nicht gefunden")
		}
		if err != nil {
			return err
		}

		next, err := transition(q, triggerExchange)
		if err != nil {
			return utils.Conflict("Kontaktaustausch nicht möglich").WithDetails(err.Error())
		}

		now := s.now()
		ce := &models.QuoteContactExchange{
			Status:          models.ContactExchangeStatusCompleted,
			CustomerContact: customer.Contact(),
			ProviderContact: company.Contact(),
			CompletedAt:     &now,
		}
		if err := s.repos.Quotes.UpdateFields(ctx, q.ID, map[string]any{
			"status":          next,
			"contactExchange": ce,
			"updatedAt":       now,
		}); err != nil {
			return err
		}

		notes = notification.ContactsExchanged(q, customer.DisplayName(), company.DisplayName())
		if err := s.writeOutbox(ctx, notes); err != nil {
			return err
		}

		q.Status = next
		q.ContactExchange = ce
		q.UpdatedAt = now
		result.Quote = *q
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Kontaktaustausch fehlgeschlagen")
	}

	if !result.AlreadyExchanged {
		s.logger.Info("Contacts exchanged", zap.String("quoteId", quoteID))
		s.enqueue(ctx, notes)
	}
	return result, nil
}
