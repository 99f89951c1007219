package companyRepo

import (
	"context"
	"fmt"
	"time"

	"taskilo/database"
	"taskilo/models"
)

// CompanyRepository defines methods for provider company data access.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*models.Company, error)
	Save(ctx context.Context, c *models.Company) error
	UpdateLastTransfer(ctx context.Context, id string, pointer models.TransferPointer) error
}

// StoreCompanyRepo implements CompanyRepository on a database.Store.
type StoreCompanyRepo struct {
	store database.Store
}

func NewCompanyRepo(store database.Store) *StoreCompanyRepo {
	return &StoreCompanyRepo{store: store}
}

func (r *StoreCompanyRepo) GetByID(ctx context.Context, id string) (*models.Company, error) {
	var c models.Company
	if err := r.store.Get(ctx, database.CollectionCompanies, id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save upserts the whole company document.
func (r *StoreCompanyRepo) Save(ctx context.Context, c *models.Company) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if err := r.store.Set(ctx, database.CollectionCompanies, c.ID, c); err != nil {
		return fmt.Errorf("failed to save company: %w", err)
	}
	return nil
}

func (r *StoreCompanyRepo) UpdateLastTransfer(ctx context.Context, id string, pointer models.TransferPointer) error {
	return r.store.Update(ctx, database.CollectionCompanies, id, map[string]any{
		"lastTransfer": pointer,
		"updatedAt":    time.Now().UTC(),
	})
}
