package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stripe/stripe-go/v76"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestUnconfiguredGateway(t *testing.T) {
	g := NewStripeGateway("", zap.NewNop())
	ctx := context.Background()

	_, err := g.CreatePaymentIntent(ctx, IntentRequest{Amount: 100, Currency: "eur"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = g.GetPaymentIntent(ctx, "pi_1")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = g.CreateTransfer(ctx, TransferRequest{Amount: 100, Currency: "eur", Destination: "acct_1"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestProviderMessage(t *testing.T) {
	assert.Equal(t, "Your card was declined.", ProviderMessage(&stripe.Error{Msg: "Your card was declined."}))
	assert.Equal(t, "timeout", ProviderMessage(errors.New("timeout")))
	assert.Equal(t, "", ProviderMessage(nil))
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	_, err := ParseWebhook([]byte(`{"id":"evt_1"}`), "t=1,v1=deadbeef", "whsec_test")
	assert.Error(t, err)

	_, err = ParseWebhook([]byte(`{}`), "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
