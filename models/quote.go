package models

import "time"

// QuoteStatus is the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteStatusOpen              QuoteStatus = "open"
	QuoteStatusAccepted          QuoteStatus = "accepted"
	QuoteStatusPaid              QuoteStatus = "paid"
	QuoteStatusContactsExchanged QuoteStatus = "contacts_exchanged"
)

// Provision (commission) payment states.
const (
	ProvisionStatusPending = "pending"
	ProvisionStatusPaid    = "paid"
)

// Contact exchange states.
const (
	ContactExchangeStatusPending   = "pending"
	ContactExchangeStatusCompleted = "completed"
)

// Quote is a priced offer from a provider (company) to a customer (user).
type Quote struct {
	ID               string                `bson:"id" json:"id" firestore:"id"`
	CustomerID       string                `bson:"customerId" json:"customerId" firestore:"customerId"`
	ProviderID       string                `bson:"providerId" json:"providerId" firestore:"providerId"`
	Title            string                `bson:"title" json:"title" firestore:"title"`
	Description      string                `bson:"description,omitempty" json:"description,omitempty" firestore:"description,omitempty"`
	Status           QuoteStatus           `bson:"status" json:"status" firestore:"status"`
	Response         *QuoteResponse        `bson:"response,omitempty" json:"response,omitempty" firestore:"response,omitempty"`
	Payment          *QuotePayment         `bson:"payment,omitempty" json:"payment,omitempty" firestore:"payment,omitempty"`
	ReadyForExchange bool                  `bson:"readyForExchange" json:"readyForExchange" firestore:"readyForExchange"`
	ContactExchange  *QuoteContactExchange `bson:"contactExchange,omitempty" json:"contactExchange,omitempty" firestore:"contactExchange,omitempty"`
	AcceptedAt       *time.Time            `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty" firestore:"acceptedAt,omitempty"`
	CreatedAt        time.Time             `bson:"createdAt" json:"createdAt" firestore:"createdAt"`
	UpdatedAt        time.Time             `bson:"updatedAt" json:"updatedAt" firestore:"updatedAt"`
}

// QuoteResponse is the provider's price for the request.
type QuoteResponse struct {
	TotalAmount float64   `bson:"totalAmount" json:"totalAmount" firestore:"totalAmount"`
	Currency    string    `bson:"currency" json:"currency" firestore:"currency"`
	Message     string    `bson:"message,omitempty" json:"message,omitempty" firestore:"message,omitempty"`
	RespondedAt time.Time `bson:"respondedAt" json:"respondedAt" firestore:"respondedAt"`
}

// QuotePayment tracks the platform commission charged for a quote.
type QuotePayment struct {
	PaymentIntentID      string     `bson:"paymentIntentId" json:"paymentIntentId" firestore:"paymentIntentId"`
	ProvisionAmount      float64    `bson:"provisionAmount" json:"provisionAmount" firestore:"provisionAmount"`
	ProvisionAmountCents int64      `bson:"provisionAmountCents" json:"provisionAmountCents" firestore:"provisionAmountCents"`
	ProvisionRate        float64    `bson:"provisionRate" json:"provisionRate" firestore:"provisionRate"`
	ProvisionStatus      string     `bson:"provisionStatus" json:"provisionStatus" firestore:"provisionStatus"`
	Currency             string     `bson:"currency" json:"currency" firestore:"currency"`
	CreatedAt            time.Time  `bson:"createdAt" json:"createdAt" firestore:"createdAt"`
	PaidAt               *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty" firestore:"paidAt,omitempty"`
}

// QuoteContactExchange holds the contact snapshots revealed after payment.
type QuoteContactExchange struct {
	Status          string     `bson:"status" json:"status" firestore:"status"`
	CustomerContact *Contact   `bson:"customerContact,omitempty" json:"customerContact,omitempty" firestore:"customerContact,omitempty"`
	ProviderContact *Contact   `bson:"providerContact,omitempty" json:"providerContact,omitempty" firestore:"providerContact,omitempty"`
	CompletedAt     *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty" firestore:"completedAt,omitempty"`
}

// IsParticipant reports whether id is the quote's customer or provider.
func (q *Quote) IsParticipant(id string) bool {
	return id != "" && (q.CustomerID == id || q.ProviderID == id)
}

// ProvisionPaid reports whether the commission for the quote has been paid.
func (q *Quote) ProvisionPaid() bool {
	return q.Payment != nil && q.Payment.ProvisionStatus == ProvisionStatusPaid
}

// TotalAmount returns the provider's quoted total, or 0 without a response.
func (q *Quote) TotalAmount() float64 {
	if q.Response == nil {
		return 0
	}
	return q.Response.TotalAmount
}

// PublicView strips contact snapshots until the exchange has completed.
func (q Quote) PublicView() Quote {
	if q.Status != QuoteStatusContactsExchanged && q.ContactExchange != nil {
		ce := *q.ContactExchange
		ce.CustomerContact = nil
		ce.ProviderContact = nil
		q.ContactExchange = &ce
	}
	return q
}

// CreateQuoteRequest is the body of POST /api/quotes.
type CreateQuoteRequest struct {
	ProviderID  string `json:"providerId" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// QuoteResponseRequest is the body a provider submits with its price.
type QuoteResponseRequest struct {
	TotalAmount float64 `json:"totalAmount" binding:"required"`
	Currency    string  `json:"currency"`
	Message     string  `json:"message"`
}

// Quote payment actions accepted by POST /api/quotes/:quoteId/payment.
const (
	PaymentActionCreateIntent = "create_payment_intent"
	PaymentActionConfirm      = "confirm_payment"
)

// QuotePaymentRequest is the body of POST /api/quotes/:quoteId/payment.
type QuotePaymentRequest struct {
	Action          string `json:"action" binding:"required"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// PaymentIntentResult is returned after creating (or reusing) an intent.
type PaymentIntentResult struct {
	ClientSecret         string  `json:"clientSecret"`
	PaymentIntentID      string  `json:"paymentIntentId"`
	ProvisionAmount      float64 `json:"provisionAmount"`
	ProvisionAmountCents int64   `json:"provisionAmountCents"`
	Currency             string  `json:"currency"`
	Reused               bool    `json:"reused,omitempty"`
}

// PaymentConfirmationResult is returned after confirming a payment.
type PaymentConfirmationResult struct {
	QuoteID          string      `json:"quoteId"`
	Status           QuoteStatus `json:"status"`
	ReadyForExchange bool        `json:"readyForExchange"`
	AlreadyPaid      bool        `json:"alreadyPaid,omitempty"`
}

// ContactExchangeResult is returned by the contact exchange.
type ContactExchangeResult struct {
	Quote            Quote `json:"quote"`
	AlreadyExchanged bool  `json:"alreadyExchanged,omitempty"`
}
