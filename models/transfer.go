package models

import "time"

// Failed transfer states.
const (
	TransferStatusPendingRetry = "pending_retry"
	TransferStatusCompleted    = "completed"
)

// FailedTransfer records a payout to a connected account that did not go
// through. It is only retried when an operator asks for it.
type FailedTransfer struct {
	ID              string     `bson:"id" json:"id" firestore:"id"`
	CompanyID       string     `bson:"companyId" json:"companyId" firestore:"companyId"`
	StripeAccountID string     `bson:"stripeAccountId" json:"stripeAccountId" firestore:"stripeAccountId"`
	QuoteID         string     `bson:"quoteId,omitempty" json:"quoteId,omitempty" firestore:"quoteId,omitempty"`
	Amount          int64      `bson:"amount" json:"amount" firestore:"amount"`
	Currency        string     `bson:"currency" json:"currency" firestore:"currency"`
	Description     string     `bson:"description,omitempty" json:"description,omitempty" firestore:"description,omitempty"`
	RetryCount      int        `bson:"retryCount" json:"retryCount" firestore:"retryCount"`
	Status          string     `bson:"status" json:"status" firestore:"status"`
	OriginalError   string     `bson:"originalError,omitempty" json:"originalError,omitempty" firestore:"originalError,omitempty"`
	LastError       string     `bson:"lastError,omitempty" json:"lastError,omitempty" firestore:"lastError,omitempty"`
	NewTransferID   string     `bson:"newTransferId,omitempty" json:"newTransferId,omitempty" firestore:"newTransferId,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt" json:"updatedAt" firestore:"updatedAt"`
	LastRetryAt     *time.Time `bson:"lastRetryAt,omitempty" json:"lastRetryAt,omitempty" firestore:"lastRetryAt,omitempty"`
	CompletedAt     *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty" firestore:"completedAt,omitempty"`
}

// PayoutRequest is the body of POST /api/admin/transfers.
type PayoutRequest struct {
	CompanyID   string `json:"companyId" binding:"required"`
	QuoteID     string `json:"quoteId"`
	Amount      int64  `json:"amount" binding:"required"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// PayoutResult reports the outcome of a payout attempt.
type PayoutResult struct {
	Success          bool   `json:"success"`
	TransferID       string `json:"transferId,omitempty"`
	FailedTransferID string `json:"failedTransferId,omitempty"`
	Error            string `json:"error,omitempty"`
}

// RetryTransfersRequest is the body of POST /api/admin/transfers/retry.
type RetryTransfersRequest struct {
	TransferIDs []string `json:"transferIds" binding:"required"`
}

// TransferRetryResult is the per-record outcome of a retry batch.
type TransferRetryResult struct {
	ID            string `json:"id"`
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	NewTransferID string `json:"newTransferId,omitempty"`
	RetryCount    int    `json:"retryCount,omitempty"`
	Error         string `json:"error,omitempty"`
}
