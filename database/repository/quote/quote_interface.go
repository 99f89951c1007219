package quoteRepo

import (
	"context"
	"time"

	"taskilo/models"
)

// QuoteRepository defines methods for quote data access.
type QuoteRepository interface {
	// Create inserts a new quote.
	Create(ctx context.Context, q *models.Quote) error
	// GetByID retrieves a quote by its id.
	GetByID(ctx context.Context, id string) (*models.Quote, error)
	// UpdateFields sets the given (dotted) fields and bumps updatedAt.
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	// ListStuckPaid returns paid quotes ready for exchange that have not
	// changed since olderThan.
	ListStuckPaid(ctx context.Context, olderThan time.Time, limit int) ([]models.Quote, error)
}
