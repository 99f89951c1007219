package quoteRepo

import (
	"context"
	"testing"
	"time"

	"taskilo/database"
	"taskilo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListStuckPaid(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	repo := NewQuoteRepo(store)

	old := time.Now().UTC().Add(-time.Hour)
	seed := []models.Quote{
		{ID: "q-open", Status: models.QuoteStatusOpen},
		{ID: "q-stuck", Status: models.QuoteStatusPaid, ReadyForExchange: true},
		{ID: "q-fresh", Status: models.QuoteStatusPaid, ReadyForExchange: true},
		{ID: "q-done", Status: models.QuoteStatusContactsExchanged, ReadyForExchange: true},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}
	require.NoError(t, repo.UpdateFields(ctx, "q-stuck", map[string]any{"updatedAt": old}))
	require.NoError(t, repo.UpdateFields(ctx, "q-open", map[string]any{"updatedAt": old}))

	quotes, err := repo.ListStuckPaid(ctx, time.Now().UTC().Add(-10*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "q-stuck", quotes[0].ID)
}

func TestUpdateFieldsNotFound(t *testing.T) {
	repo := NewQuoteRepo(database.NewMemoryStore())
	err := repo.UpdateFields(context.Background(), "missing", map[string]any{"status": "paid"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}
