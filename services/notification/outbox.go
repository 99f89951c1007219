package notification

import (
	"context"
	"fmt"
	"time"

	"taskilo/models"
)

// Enqueuer schedules the asynchronous delivery of an outbox entry.
type Enqueuer interface {
	EnqueueDelivery(ctx context.Context, notificationID string) error
}

// notificationID is deterministic so a repeated state change cannot create a
// second outbox entry for the same party.
func notificationID(quoteID, kind, recipientType string) string {
	return fmt.Sprintf("%s-%s-%s", quoteID, kind, recipientType)
}

func newNotification(q *models.Quote, kind, recipientType, recipientID, title, body string) *models.Notification {
	now := time.Now().UTC()
	return &models.Notification{
		ID:            notificationID(q.ID, kind, recipientType),
		RecipientID:   recipientID,
		RecipientType: recipientType,
		Type:          kind,
		Title:         title,
		Body:          body,
		Data: map[string]string{
			"type":    kind,
			"quoteId": q.ID,
			"role":    recipientType,
		},
		QuoteID:   q.ID,
		Status:    models.NotificationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PaymentConfirmed builds the outbox entries announcing a paid provision to
// both parties.
func PaymentConfirmed(q *models.Quote, customerName, providerName string) []*models.Notification {
	return []*models.Notification{
		newNotification(q, models.NotificationPaymentConfirmed, models.RecipientUser, q.CustomerID,
			"Zahlung bestätigt",
			fmt.Sprintf("Die Provision für „%s“ bei %s wurde bezahlt. Die Kontaktdaten werden jetzt freigegeben.", q.Title, providerName),
		),
		newNotification(q, models.NotificationPaymentConfirmed, models.RecipientCompany, q.ProviderID,
			"Provision bezahlt",
			fmt.Sprintf("Die Provision für „%s“ mit %s wurde bezahlt.", q.Title, customerName),
		),
	}
}

// ContactsExchanged builds the outbox entries announcing the released
// contact details.
func ContactsExchanged(q *models.Quote, customerName, providerName string) []*models.Notification {
	return []*models.Notification{
		newNotification(q, models.NotificationContactsExchanged, models.RecipientUser, q.CustomerID,
			"Kontaktdaten freigegeben",
			fmt.Sprintf("Sie können %s jetzt direkt kontaktieren.", providerName),
		),
		newNotification(q, models.NotificationContactsExchanged, models.RecipientCompany, q.ProviderID,
			"Kontaktdaten freigegeben",
			fmt.Sprintf("Die Kontaktdaten von %s für „%s“ sind jetzt verfügbar.", customerName, q.Title),
		),
	}
}
