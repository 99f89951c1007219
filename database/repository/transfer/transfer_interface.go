package transferRepo

import (
	"context"
	"time"

	"taskilo/models"
)

// TransferRepository defines methods for failed transfer records.
type TransferRepository interface {
	// Create inserts a new failed transfer record.
	Create(ctx context.Context, t *models.FailedTransfer) error
	// GetByID retrieves a record by its id.
	GetByID(ctx context.Context, id string) (*models.FailedTransfer, error)
	// ListPending returns records awaiting a retry, oldest first.
	ListPending(ctx context.Context, limit int) ([]models.FailedTransfer, error)
	// MarkCompleted stores the successful retry's transfer id.
	MarkCompleted(ctx context.Context, id, newTransferID string, at time.Time) error
	// RecordFailure stores the outcome of a failed retry.
	RecordFailure(ctx context.Context, id string, retryCount int, lastError string, at time.Time) error
}
