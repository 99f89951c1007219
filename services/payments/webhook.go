package payments

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const EventPaymentIntentSucceeded = "payment_intent.succeeded"

// WebhookEvent is the part of a Stripe event the service acts on.
type WebhookEvent struct {
	ID     string
	Type   string
	Intent *Intent
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event.
// Payment intent events carry the decoded intent.
func ParseWebhook(payload []byte, signature, secret string) (*WebhookEvent, error) {
	if secret == "" {
		return nil, ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid webhook signature: %w", err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data != nil && len(event.Data.Raw) > 0 && out.Type == EventPaymentIntentSucceeded {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to decode payment intent: %w", err)
		}
		out.Intent = intentFromStripe(&pi)
	}
	return out, nil
}
