package models

import "time"

// Notification types.
const (
	NotificationPaymentConfirmed  = "payment_confirmed"
	NotificationContactsExchanged = "contacts_exchanged"
)

// Recipient types.
const (
	RecipientUser    = "user"
	RecipientCompany = "company"
)

// Outbox delivery states.
const (
	NotificationStatusPending   = "pending"
	NotificationStatusDelivered = "delivered"
	NotificationStatusFailed    = "failed"
)

// Notification is an outbox entry written together with the state change it
// announces and delivered asynchronously.
type Notification struct {
	ID            string            `bson:"id" json:"id" firestore:"id"`
	RecipientID   string            `bson:"recipientId" json:"recipientId" firestore:"recipientId"`
	RecipientType string            `bson:"recipientType" json:"recipientType" firestore:"recipientType"`
	Type          string            `bson:"type" json:"type" firestore:"type"`
	Title         string            `bson:"title" json:"title" firestore:"title"`
	Body          string            `bson:"body" json:"body" firestore:"body"`
	Data          map[string]string `bson:"data,omitempty" json:"data,omitempty" firestore:"data,omitempty"`
	QuoteID       string            `bson:"quoteId,omitempty" json:"quoteId,omitempty" firestore:"quoteId,omitempty"`
	Status        string            `bson:"status" json:"status" firestore:"status"`
	Attempts      int               `bson:"attempts" json:"attempts" firestore:"attempts"`
	LastError     string            `bson:"lastError,omitempty" json:"lastError,omitempty" firestore:"lastError,omitempty"`
	Read          bool              `bson:"read" json:"read" firestore:"read"`
	CreatedAt     time.Time         `bson:"createdAt" json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time         `bson:"updatedAt" json:"updatedAt" firestore:"updatedAt"`
	DeliveredAt   *time.Time        `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty" firestore:"deliveredAt,omitempty"`
}
