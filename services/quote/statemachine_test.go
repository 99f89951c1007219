package quote

import (
	"testing"

	"taskilo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitions(t *testing.T) {
	q := &models.Quote{Status: models.QuoteStatusOpen}

	_, err := transition(q, triggerAccept)
	assert.Error(t, err, "accept without a price")

	next, err := transition(q, triggerRespond)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusOpen, next)

	q.Response = &models.QuoteResponse{TotalAmount: 100}
	next, err = transition(q, triggerAccept)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusAccepted, next)

	q.Status = next
	_, err = transition(q, triggerPay)
	assert.Error(t, err, "pay without an intent")
	_, err = transition(q, triggerRespond)
	assert.Error(t, err, "respond after acceptance")

	q.Payment = &models.QuotePayment{PaymentIntentID: "pi_1", ProvisionStatus: models.ProvisionStatusPending}
	next, err = transition(q, triggerPay)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusPaid, next)
}

func TestExchangeRequiresPaidProvision(t *testing.T) {
	q := &models.Quote{
		Status:  models.QuoteStatusPaid,
		Payment: &models.QuotePayment{PaymentIntentID: "pi_1", ProvisionStatus: models.ProvisionStatusPending},
	}
	_, err := transition(q, triggerExchange)
	assert.Error(t, err)

	q.Payment.ProvisionStatus = models.ProvisionStatusPaid
	next, err := transition(q, triggerExchange)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusContactsExchanged, next)

	for _, st := range []models.QuoteStatus{models.QuoteStatusOpen, models.QuoteStatusAccepted, models.QuoteStatusContactsExchanged} {
		q.Status = st
		_, err := transition(q, triggerExchange)
		assert.Error(t, err, st)
	}
}
