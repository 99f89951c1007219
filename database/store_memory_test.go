package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	ID     string    `json:"id"`
	Status string    `json:"status"`
	Count  int       `json:"count"`
	At     time.Time `json:"at"`
	Nested *struct {
		Flag string `json:"flag"`
	} `json:"nested,omitempty"`
}

func TestMemoryStore_CreateGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "docs", "a", testDoc{ID: "a", Status: "open", Count: 2}))
	assert.ErrorIs(t, s.Create(ctx, "docs", "a", testDoc{ID: "a"}), ErrAlreadyExists)

	var got testDoc
	require.NoError(t, s.Get(ctx, "docs", "a", &got))
	assert.Equal(t, "open", got.Status)
	assert.Equal(t, 2, got.Count)

	assert.ErrorIs(t, s.Get(ctx, "docs", "missing", &got), ErrNotFound)
}

func TestMemoryStore_UpdateDottedPath(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "docs", "a", testDoc{ID: "a", Status: "open"}))

	require.NoError(t, s.Update(ctx, "docs", "a", map[string]any{
		"status":      "paid",
		"nested.flag": "yes",
	}))

	var got testDoc
	require.NoError(t, s.Get(ctx, "docs", "a", &got))
	assert.Equal(t, "paid", got.Status)
	require.NotNil(t, got.Nested)
	assert.Equal(t, "yes", got.Nested.Flag)

	assert.ErrorIs(t, s.Update(ctx, "docs", "missing", map[string]any{"status": "x"}), ErrNotFound)
}

func TestMemoryStore_Find(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, st := range []string{"open", "paid", "paid", "paid"} {
		id := string(rune('a' + i))
		require.NoError(t, s.Create(ctx, "docs", id, testDoc{ID: id, Status: st, Count: i, At: base.Add(time.Duration(i) * time.Hour)}))
	}

	docs, err := s.Find(ctx, "docs", Query{
		Filters: []Filter{Where("status", OpEqual, "paid"), Where("at", OpLess, base.Add(3*time.Hour))},
		OrderBy: "-count",
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	var first testDoc
	require.NoError(t, docs[0].DataTo(&first))
	assert.Equal(t, "c", first.ID)

	limited, err := s.Find(ctx, "docs", Query{OrderBy: "count", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	var only testDoc
	require.NoError(t, limited[0].DataTo(&only))
	assert.Equal(t, "a", only.ID)
}

func TestMemoryStore_TransactionRollback(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "docs", "a", testDoc{ID: "a", Status: "open"}))

	boom := errors.New("boom")
	err := s.RunTransaction(ctx, func(ctx context.Context) error {
		if err := s.Update(ctx, "docs", "a", map[string]any{"status": "paid"}); err != nil {
			return err
		}
		if err := s.Create(ctx, "docs", "b", testDoc{ID: "b"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var got testDoc
	require.NoError(t, s.Get(ctx, "docs", "a", &got))
	assert.Equal(t, "open", got.Status)
	assert.ErrorIs(t, s.Get(ctx, "docs", "b", &got), ErrNotFound)
}

func TestMemoryStore_TransactionCommitAndNesting(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.RunTransaction(ctx, func(ctx context.Context) error {
		if err := s.Create(ctx, "docs", "a", testDoc{ID: "a"}); err != nil {
			return err
		}
		return s.RunTransaction(ctx, func(ctx context.Context) error {
			return s.Create(ctx, "docs", "b", testDoc{ID: "b"})
		})
	})
	require.NoError(t, err)

	var got testDoc
	assert.NoError(t, s.Get(ctx, "docs", "a", &got))
	assert.NoError(t, s.Get(ctx, "docs", "b", &got))
}
