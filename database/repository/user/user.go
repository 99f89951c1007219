package userRepo

import (
	"context"
	"fmt"
	"time"

	"taskilo/database"
	"taskilo/models"
)

// UserRepository defines methods for customer data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Save upserts a user record.
	Save(ctx context.Context, u *models.User) error
}

// StoreUserRepo implements UserRepository on a database.Store.
type StoreUserRepo struct {
	store database.Store
}

// NewUserRepo creates a new UserRepository backed by store.
func NewUserRepo(store database.Store) *StoreUserRepo {
	return &StoreUserRepo{store: store}
}

func (r *StoreUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.store.Get(ctx, database.CollectionUsers, id, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *StoreUserRepo) Save(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if err := r.store.Set(ctx, database.CollectionUsers, u.ID, u); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}
