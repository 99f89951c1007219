package transfer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskilo/database"
	"taskilo/database/repository"
	"taskilo/models"
	"taskilo/services/payments"
	"taskilo/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxRetryBatch       = 100
	msgAlreadyCompleted = "Already completed"
)

// TransferService pays out to connected accounts and retries failed payouts
// on operator request.
type TransferService interface {
	ListPending(ctx context.Context, limit int) ([]models.FailedTransfer, error)
	Payout(ctx context.Context, req models.PayoutRequest) (*models.PayoutResult, error)
	Retry(ctx context.Context, ids []string) ([]models.TransferRetryResult, error)
}

type Service struct {
	repos            *repository.Set
	gateway          payments.Gateway
	stripeConfigured bool
	defaultCurrency  string
	logger           *zap.Logger
	now              func() time.Time
}

func NewService(repos *repository.Set, gateway payments.Gateway, stripeConfigured bool, defaultCurrency string, logger *zap.Logger) *Service {
	return &Service{
		repos:            repos,
		gateway:          gateway,
		stripeConfigured: stripeConfigured,
		defaultCurrency:  defaultCurrency,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) ListPending(ctx context.Context, limit int) ([]models.FailedTransfer, error) {
	transfers, err := s.repos.Transfers.ListPending(ctx, limit)
	if err != nil {
		return nil, utils.Internal("Ausstehende Transfers konnten nicht geladen werden", err)
	}
	return transfers, nil
}

// Payout transfers req.Amount to the company's connected account. A provider
// failure is recorded as a failed transfer for later retry and reported in the
// result, not as an error.
func (s *Service) Payout(ctx context.Context, req models.PayoutRequest) (*models.PayoutResult, error) {
	if !s.stripeConfigured {
		return nil, utils.ConfigError("Stripe-Konfiguration fehlt")
	}
	if req.Amount <= 0 {
		return nil, utils.Validation("Betrag muss größer als 0 sein")
	}

	company, err := s.repos.Companies.GetByID(ctx, req.CompanyID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, utils.NotFound("Anbieter nicht gefunden")
	}
	if err != nil {
		return nil, utils.Internal("Anbieter konnte nicht geladen werden", err)
	}
	if company.StripeAccountID == "" {
		return nil, utils.Validation("Anbieter hat kein verbundenes Stripe-Konto")
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	tr := payments.TransferRequest{
		Amount:      req.Amount,
		Currency:    currency,
		Destination: company.StripeAccountID,
		Description: req.Description,
		Metadata:    map[string]string{"companyId": company.ID},
	}
	if req.QuoteID != "" {
		tr.Metadata["quoteId"] = req.QuoteID
		tr.IdempotencyKey = fmt.Sprintf("quote-%s-payout-%d", req.QuoteID, req.Amount)
	}

	transfer, err := s.gateway.CreateTransfer(ctx, tr)
	if errors.Is(err, payments.ErrNotConfigured) {
		return nil, utils.ConfigError("Stripe-Konfiguration fehlt")
	}
	if err != nil {
		msg := payments.ProviderMessage(err)
		failed := &models.FailedTransfer{
			ID:              uuid.New().String(),
			CompanyID:       company.ID,
			StripeAccountID: company.StripeAccountID,
			QuoteID:         req.QuoteID,
			Amount:          req.Amount,
			Currency:        currency,
			Description:     req.Description,
			Status:          models.TransferStatusPendingRetry,
			OriginalError:   msg,
			LastError:       msg,
		}
		if cerr := s.repos.Transfers.Create(ctx, failed); cerr != nil {
			return nil, utils.Internal("Fehlgeschlagener Transfer konnte nicht gespeichert werden", cerr)
		}
		s.logger.Warn("Payout failed, recorded for retry",
			zap.String("companyId", company.ID),
			zap.String("failedTransferId", failed.ID),
			zap.Error(err),
		)
		return &models.PayoutResult{Success: false, FailedTransferID: failed.ID, Error: msg}, nil
	}

	if err := s.repos.Companies.UpdateLastTransfer(ctx, company.ID, models.TransferPointer{
		TransferID: transfer.ID,
		Amount:     req.Amount,
		Currency:   currency,
		At:         s.now(),
	}); err != nil {
		s.logger.Error("Failed to update last transfer", zap.String("companyId", company.ID), zap.Error(err))
	}

	s.logger.Info("Payout completed", zap.String("companyId", company.ID), zap.String("transferId", transfer.ID))
	return &models.PayoutResult{Success: true, TransferID: transfer.ID}, nil
}

// Retry re-attempts the given failed transfers one by one and reports the
// outcome per id. Completed records are skipped without calling Stripe, so
// a batch of completed records succeeds even without a Stripe configuration.
func (s *Service) Retry(ctx context.Context, ids []string) ([]models.TransferRetryResult, error) {
	seen := make(map[string]bool, len(ids))
	var unique []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, utils.Validation("transferIds fehlt")
	}
	if len(unique) > maxRetryBatch {
		return nil, utils.Validation(fmt.Sprintf("Maximal %d Transfers pro Anfrage", maxRetryBatch))
	}

	results := make([]models.TransferRetryResult, 0, len(unique))
	for _, id := range unique {
		if err := ctx.Err(); err != nil {
			results = append(results, models.TransferRetryResult{ID: id, Error: err.Error()})
			continue
		}
		res, err := s.retryOne(ctx, id)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// retryOne only returns an error when no payout can be attempted at all.
func (s *Service) retryOne(ctx context.Context, id string) (models.TransferRetryResult, error) {
	res := models.TransferRetryResult{ID: id}

	ft, err := s.repos.Transfers.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		res.Error = "Transfer nicht gefunden"
		return res, nil
	}
	if err != nil {
		res.Error = err.Error()
		return res, nil
	}
	res.RetryCount = ft.RetryCount

	if ft.Status == models.TransferStatusCompleted {
		res.Success = true
		res.Message = msgAlreadyCompleted
		res.NewTransferID = ft.NewTransferID
		return res, nil
	}
	if !canRetry(ft.Status) {
		res.Error = fmt.Sprintf("Transfer im Status %q kann nicht wiederholt werden", ft.Status)
		return res, nil
	}
	if !s.stripeConfigured {
		return res, utils.ConfigError("Stripe-Konfiguration fehlt")
	}

	metadata := map[string]string{
		"originalFailedTransferId": ft.ID,
		"retryCount":               strconv.Itoa(ft.RetryCount + 1),
	}
	if ft.QuoteID != "" {
		metadata["quoteId"] = ft.QuoteID
	}

	// The key only changes after a recorded failure, so a timed out call that
	// is retried by hand cannot pay out twice.
	transfer, err := s.gateway.CreateTransfer(ctx, payments.TransferRequest{
		Amount:         ft.Amount,
		Currency:       ft.Currency,
		Destination:    ft.StripeAccountID,
		Description:    ft.Description,
		Metadata:       metadata,
		IdempotencyKey: fmt.Sprintf("failed-transfer-%s-attempt-%d", ft.ID, ft.RetryCount),
	})
	now := s.now()
	if err != nil {
		msg := payments.ProviderMessage(err)
		count := ft.RetryCount + 1
		if rerr := s.repos.Transfers.RecordFailure(ctx, ft.ID, count, msg, now); rerr != nil {
			s.logger.Error("Failed to record retry failure", zap.String("transferId", ft.ID), zap.Error(rerr))
		}
		s.logger.Warn("Transfer retry failed",
			zap.String("transferId", ft.ID),
			zap.Int("retryCount", count),
			zap.Error(err),
		)
		res.RetryCount = count
		res.Error = msg
		return res, nil
	}

	if err := s.repos.Transfers.MarkCompleted(ctx, ft.ID, transfer.ID, now); err != nil {
		s.logger.Error("Transfer succeeded but could not be recorded",
			zap.String("transferId", ft.ID),
			zap.String("newTransferId", transfer.ID),
			zap.Error(err),
		)
		res.NewTransferID = transfer.ID
		res.Error = "Transfer ausgeführt, Status konnte nicht gespeichert werden"
		return res, nil
	}
	// The payout is recorded; the company pointer is informational only.
	if err := s.repos.Companies.UpdateLastTransfer(ctx, ft.CompanyID, models.TransferPointer{
		TransferID: transfer.ID,
		Amount:     ft.Amount,
		Currency:   ft.Currency,
		At:         now,
	}); err != nil {
		s.logger.Warn("Failed to update last transfer",
			zap.String("companyId", ft.CompanyID),
			zap.String("newTransferId", transfer.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("Transfer retry succeeded", zap.String("transferId", ft.ID), zap.String("newTransferId", transfer.ID))
	res.Success = true
	res.NewTransferID = transfer.ID
	return res, nil
}
