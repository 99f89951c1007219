package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskilo/database"
	"taskilo/models"
	"taskilo/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxTotalAmount caps a quote total in major units.
const maxTotalAmount = 1_000_000

// CreateQuote opens a quote request from the calling customer to a provider.
func (s *Service) CreateQuote(ctx context.Context, caller Caller, req models.CreateQuoteRequest) (*models.Quote, error) {
	if caller.Role != utils.RoleCustomer {
		return nil, utils.Forbidden("Nur Kunden können Angebote anfragen")
	}
	if strings.TrimSpace(req.ProviderID) == "" || strings.TrimSpace(req.Title) == "" {
		return nil, utils.Validation("Anbieter und Titel sind erforderlich")
	}

	if _, err := s.repos.Companies.GetByID(ctx, req.ProviderID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NotFound("Anbieter nicht gefunden")
		}
		return nil, utils.Internal("Anbieter konnte nicht geladen werden", err)
	}

	q := &models.Quote{
		ID:          uuid.New().String(),
		CustomerID:  caller.ID,
		ProviderID:  req.ProviderID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Status:      models.QuoteStatusOpen,
	}
	if err := s.repos.Quotes.Create(ctx, q); err != nil {
		return nil, utils.Internal("Angebot konnte nicht erstellt werden", err)
	}

	s.logger.Info("Quote created",
		zap.String("quoteId", q.ID),
		zap.String("customerId", q.CustomerID),
		zap.String("providerId", q.ProviderID),
	)
	return q, nil
}

// GetQuote returns a quote to one of its participants. Contact snapshots are
// hidden until the exchange completed.
func (s *Service) GetQuote(ctx context.Context, caller Caller, quoteID string) (*models.Quote, error) {
	q, err := s.loadQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if err := authorizeParticipant(q, caller); err != nil {
		return nil, err
	}
	view := q.PublicView()
	return &view, nil
}

// RespondToQuote stores the provider's price on an open quote.
func (s *Service) RespondToQuote(ctx context.Context, caller Caller, quoteID string, req models.QuoteResponseRequest) (*models.Quote, error) {
	if req.TotalAmount <= 0 {
		return nil, utils.Validation("Der Angebotsbetrag muss größer als 0 sein")
	}
	if req.TotalAmount > maxTotalAmount {
		return nil, utils.Validation(fmt.Sprintf("Der Angebotsbetrag darf höchstens %d betragen", maxTotalAmount))
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.opts.DefaultCurrency
	}

	var out *models.Quote
	err := s.repos.Store.RunTransaction(ctx, func(ctx context.Context) error {
		q, err := s.loadQuote(ctx, quoteID)
		if err != nil {
			return err
		}
		if caller.Role != utils.RoleProvider || q.ProviderID != caller.ID {
			return utils.Forbidden("Nur der angefragte Anbieter kann antworten")
		}
		if _, err := transition(q, triggerRespond); err != nil {
			return utils.Validation("Angebot kann nicht mehr beantwortet werden").WithDetails("status: " + string(q.Status))
		}

		q.Response = &models.QuoteResponse{
			TotalAmount: req.TotalAmount,
			Currency:    currency,
			Message:     strings.TrimSpace(req.Message),
			RespondedAt: s.now(),
		}
		if err := s.repos.Quotes.UpdateFields(ctx, q.ID, map[string]any{"response": q.Response}); err != nil {
			return err
		}
		out = q
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Antwort konnte nicht gespeichert werden")
	}

	s.logger.Info("Quote answered", zap.String("quoteId", out.ID), zap.Float64("totalAmount", req.TotalAmount))
	return out, nil
}

// AcceptQuote moves an answered quote to accepted on behalf of its customer.
func (s *Service) AcceptQuote(ctx context.Context, caller Caller, quoteID string) (*models.Quote, error) {
	var out *models.Quote
	err := s.repos.Store.RunTransaction(ctx, func(ctx context.Context) error {
		q, err := s.loadQuote(ctx, quoteID)
		if err != nil {
			return err
		}
		if caller.Role != utils.RoleCustomer || q.CustomerID != caller.ID {
			return utils.Forbidden("Nur der Kunde kann das Angebot annehmen")
		}
		if q.Status == models.QuoteStatusOpen && q.TotalAmount() <= 0 {
			return utils.Validation("Das Angebot enthält noch keinen Preis")
		}
		next, err := transition(q, triggerAccept)
		if err != nil {
			return utils.Validation("Angebot kann nicht angenommen werden").WithDetails("status: " + string(q.Status))
		}

		now := s.now()
		if err := s.repos.Quotes.UpdateFields(ctx, q.ID, map[string]any{
			"status":     next,
			"acceptedAt": now,
		}); err != nil {
			return err
		}
		q.Status = next
		q.AcceptedAt = &now
		out = q
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Angebot konnte nicht angenommen werden")
	}

	s.logger.Info("Quote accepted", zap.String("quoteId", out.ID))
	return out, nil
}
