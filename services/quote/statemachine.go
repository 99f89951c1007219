package quote

import (
	"context"

	"taskilo/models"

	"github.com/qmuntal/stateless"
)

const (
	triggerRespond  = "respond"
	triggerAccept   = "accept"
	triggerPay      = "pay"
	triggerExchange = "exchange_contacts"
)

// newQuoteMachine configures the quote lifecycle starting at q.Status.
// Contacts can only be exchanged once the provision is paid.
func newQuoteMachine(q *models.Quote) *stateless.StateMachine {
	machine := stateless.NewStateMachine(q.Status)

	machine.Configure(models.QuoteStatusOpen).
		PermitReentry(triggerRespond).
		Permit(triggerAccept, models.QuoteStatusAccepted, func(_ context.Context, _ ...any) bool {
			return q.TotalAmount() > 0
		})

	machine.Configure(models.QuoteStatusAccepted).
		Permit(triggerPay, models.QuoteStatusPaid, func(_ context.Context, _ ...any) bool {
			return q.Payment != nil && q.Payment.PaymentIntentID != ""
		})

	machine.Configure(models.QuoteStatusPaid).
		Permit(triggerExchange, models.QuoteStatusContactsExchanged, func(_ context.Context, _ ...any) bool {
			return q.ProvisionPaid()
		})

	machine.Configure(models.QuoteStatusContactsExchanged)

	return machine
}

// transition returns the status q moves to on trigger, or an error when the
// transition is not permitted.
func transition(q *models.Quote, trigger string) (models.QuoteStatus, error) {
	machine := newQuoteMachine(q)
	if err := machine.Fire(trigger); err != nil {
		return q.Status, err
	}
	return machine.MustState().(models.QuoteStatus), nil
}
