package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"taskilo/database"
	"taskilo/models"
)

// NotificationRepository is the outbox of pending notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	MarkDelivered(ctx context.Context, id string, attempts int, at time.Time) error
	// RecordAttempt stores a failed delivery; failed marks the record final.
	RecordAttempt(ctx context.Context, id string, attempts int, lastError string, failed bool) error
	// ListPending returns pending notifications created before olderThan.
	ListPending(ctx context.Context, olderThan time.Time, limit int) ([]models.Notification, error)
}

type StoreNotificationRepo struct {
	store database.Store
}

func NewNotificationRepo(store database.Store) *StoreNotificationRepo {
	return &StoreNotificationRepo{store: store}
}

func (r *StoreNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	if n.Status == "" {
		n.Status = models.NotificationStatusPending
	}
	if err := r.store.Create(ctx, database.CollectionNotifications, n.ID, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *StoreNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.store.Get(ctx, database.CollectionNotifications, id, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *StoreNotificationRepo) MarkDelivered(ctx context.Context, id string, attempts int, at time.Time) error {
	return r.store.Update(ctx, database.CollectionNotifications, id, map[string]any{
		"status":      models.NotificationStatusDelivered,
		"attempts":    attempts,
		"lastError":   "",
		"deliveredAt": at,
		"updatedAt":   at,
	})
}

func (r *StoreNotificationRepo) RecordAttempt(ctx context.Context, id string, attempts int, lastError string, failed bool) error {
	fields := map[string]any{
		"attempts":  attempts,
		"lastError": lastError,
		"updatedAt": time.Now().UTC(),
	}
	if failed {
		fields["status"] = models.NotificationStatusFailed
	}
	return r.store.Update(ctx, database.CollectionNotifications, id, fields)
}

func (r *StoreNotificationRepo) ListPending(ctx context.Context, olderThan time.Time, limit int) ([]models.Notification, error) {
	docs, err := r.store.Find(ctx, database.CollectionNotifications, database.Query{
		Filters: []database.Filter{
			database.Where("status", database.OpEqual, models.NotificationStatusPending),
			database.Where("createdAt", database.OpLess, olderThan.UTC()),
		},
		OrderBy: "createdAt",
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}

	out := make([]models.Notification, 0, len(docs))
	for _, doc := range docs {
		var n models.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}
