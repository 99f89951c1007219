package payments

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by every gateway call when no Stripe secret
// key is configured.
var ErrNotConfigured = errors.New("stripe is not configured")

// Payment intent states the workflow cares about.
const (
	IntentStatusSucceeded = "succeeded"
	IntentStatusCanceled  = "canceled"
)

// Gateway is the subset of the Stripe API used by the quote and transfer
// services.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetPaymentIntent(ctx context.Context, id string) (*Intent, error)
	CreateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error)
}

// IntentRequest describes a payment intent to create. Amount is in minor
// units.
type IntentRequest struct {
	Amount         int64
	Currency       string
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

// TransferRequest describes a payout to a connected account.
type TransferRequest struct {
	Amount         int64
	Currency       string
	Destination    string
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

type Transfer struct {
	ID          string
	Amount      int64
	Currency    string
	Destination string
}
