package quoteRepo

import (
	"context"
	"fmt"
	"time"

	"taskilo/database"
	"taskilo/models"
)

// StoreQuoteRepo implements QuoteRepository on a database.Store.
type StoreQuoteRepo struct {
	store database.Store
}

// NewQuoteRepo creates a QuoteRepository backed by store.
func NewQuoteRepo(store database.Store) *StoreQuoteRepo {
	return &StoreQuoteRepo{store: store}
}

func (r *StoreQuoteRepo) Create(ctx context.Context, q *models.Quote) error {
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	if err := r.store.Create(ctx, database.CollectionQuotes, q.ID, q); err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}
	return nil
}

func (r *StoreQuoteRepo) GetByID(ctx context.Context, id string) (*models.Quote, error) {
	var q models.Quote
	if err := r.store.Get(ctx, database.CollectionQuotes, id, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *StoreQuoteRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if _, ok := fields["updatedAt"]; !ok {
		fields["updatedAt"] = time.Now().UTC()
	}
	return r.store.Update(ctx, database.CollectionQuotes, id, fields)
}

func (r *StoreQuoteRepo) ListStuckPaid(ctx context.Context, olderThan time.Time, limit int) ([]models.Quote, error) {
	docs, err := r.store.Find(ctx, database.CollectionQuotes, database.Query{
		Filters: []database.Filter{
			database.Where("status", database.OpEqual, string(models.QuoteStatusPaid)),
			database.Where("readyForExchange", database.OpEqual, true),
			database.Where("updatedAt", database.OpLess, olderThan.UTC()),
		},
		OrderBy: "updatedAt",
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list paid quotes: %w", err)
	}

	quotes := make([]models.Quote, 0, len(docs))
	for _, doc := range docs {
		var q models.Quote
		if err := doc.DataTo(&q); err != nil {
			return nil, fmt.Errorf("failed to decode quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}
