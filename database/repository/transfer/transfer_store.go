package transferRepo

import (
	"context"
	"fmt"
	"time"

	"taskilo/database"
	"taskilo/models"
)

// StoreTransferRepo implements TransferRepository on a database.Store.
type StoreTransferRepo struct {
	store database.Store
}

// NewTransferRepo creates a TransferRepository backed by store.
func NewTransferRepo(store database.Store) *StoreTransferRepo {
	return &StoreTransferRepo{store: store}
}

func (r *StoreTransferRepo) Create(ctx context.Context, t *models.FailedTransfer) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = models.TransferStatusPendingRetry
	}
	if err := r.store.Create(ctx, database.CollectionFailedTransfers, t.ID, t); err != nil {
		return fmt.Errorf("failed to create failed transfer: %w", err)
	}
	return nil
}

func (r *StoreTransferRepo) GetByID(ctx context.Context, id string) (*models.FailedTransfer, error) {
	var t models.FailedTransfer
	if err := r.store.Get(ctx, database.CollectionFailedTransfers, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *StoreTransferRepo) ListPending(ctx context.Context, limit int) ([]models.FailedTransfer, error) {
	docs, err := r.store.Find(ctx, database.CollectionFailedTransfers, database.Query{
		Filters: []database.Filter{database.Where("status", database.OpEqual, models.TransferStatusPendingRetry)},
		OrderBy: "createdAt",
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending transfers: %w", err)
	}

	transfers := make([]models.FailedTransfer, 0, len(docs))
	for _, doc := range docs {
		var t models.FailedTransfer
		if err := doc.DataTo(&t); err != nil {
			return nil, fmt.Errorf("failed to decode transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	return transfers, nil
}

func (r *StoreTransferRepo) MarkCompleted(ctx context.Context, id, newTransferID string, at time.Time) error {
	return r.store.Update(ctx, database.CollectionFailedTransfers, id, map[string]any{
		"status":        models.TransferStatusCompleted,
		"newTransferId": newTransferID,
		"completedAt":   at,
		"updatedAt":     at,
	})
}

func (r *StoreTransferRepo) RecordFailure(ctx context.Context, id string, retryCount int, lastError string, at time.Time) error {
	return r.store.Update(ctx, database.CollectionFailedTransfers, id, map[string]any{
		"retryCount":  retryCount,
		"lastError":   lastError,
		"lastRetryAt": at,
		"updatedAt":   at,
	})
}
