package payments

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway with the Stripe API.
type StripeGateway struct {
	api    *client.API
	logger *zap.Logger
}

// NewStripeGateway returns a gateway for secretKey. An empty key yields a
// gateway whose calls fail with ErrNotConfigured.
func NewStripeGateway(secretKey string, logger *zap.Logger) *StripeGateway {
	g := &StripeGateway{logger: logger}
	if secretKey != "" {
		var api client.API
		api.Init(secretKey, nil)
		g.api = &api
	}
	return g
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	g.logger.Info("Created payment intent", zap.String("paymentIntentId", pi.ID), zap.Int64("amount", pi.Amount))
	return intentFromStripe(pi), nil
}

func (g *StripeGateway) GetPaymentIntent(ctx context.Context, id string) (*Intent, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, err
	}
	return intentFromStripe(pi), nil
}

func (g *StripeGateway) CreateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}

	params := &stripe.TransferParams{
		Amount:      stripe.Int64(req.Amount),
		Currency:    stripe.String(req.Currency),
		Destination: stripe.String(req.Destination),
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.Context = ctx

	tr, err := g.api.Transfers.New(params)
	if err != nil {
		return nil, err
	}
	g.logger.Info("Created transfer",
		zap.String("transferId", tr.ID),
		zap.String("destination", req.Destination),
		zap.Int64("amount", tr.Amount),
	)

	out := &Transfer{ID: tr.ID, Amount: tr.Amount, Currency: string(tr.Currency), Destination: req.Destination}
	if tr.Destination != nil && tr.Destination.ID != "" {
		out.Destination = tr.Destination.ID
	}
	return out, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}

// ProviderMessage extracts the human readable message of a Stripe error.
func ProviderMessage(err error) string {
	if err == nil {
		return ""
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
