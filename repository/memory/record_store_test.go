package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/repository"
)

func newProduct(id string) *domain.Record {
	return &domain.Record{
		ID:     id,
		Kind:   domain.KindProduct,
		Fields: &domain.ProductFields{Title: "mug", AvailableQty: 10},
	}
}

func TestInsertAssignsVersionOne(t *testing.T) {
	store := NewRecordStore()
	record := newProduct("p-1")

	require.NoError(t, store.Insert(context.Background(), record))
	assert.Equal(t, 1, record.Version)
	assert.False(t, record.CreatedAt.IsZero())

	stored, err := store.Get(context.Background(), domain.KindProduct, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
}

func TestInsertDuplicateKey(t *testing.T) {
	store := NewRecordStore()

	require.NoError(t, store.Insert(context.Background(), newProduct("p-1")))
	err := store.Insert(context.Background(), newProduct("p-1"))
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
}

func TestGetMissingRecord(t *testing.T) {
	store := NewRecordStore()

	_, err := store.Get(context.Background(), domain.KindProduct, "nope")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestUpdateIfMatchIncrementsByOne(t *testing.T) {
	store := NewRecordStore()
	require.NoError(t, store.Insert(context.Background(), newProduct("p-1")))

	updated, err := store.UpdateIfMatch(context.Background(), repository.Match{
		Kind:            domain.KindProduct,
		ID:              "p-1",
		ExpectedVersion: 1,
		Fields:          &domain.ProductFields{Title: "mug", AvailableQty: 9},
		Actor:           "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "alice", updated.UpdatedBy)
	assert.Equal(t, 9, updated.Fields.(*domain.ProductFields).AvailableQty)
}

func TestUpdateIfMatchStaleVersionReturnsCurrent(t *testing.T) {
	store := NewRecordStore()
	require.NoError(t, store.Insert(context.Background(), newProduct("p-1")))

	current, err := store.UpdateIfMatch(context.Background(), repository.Match{
		Kind:            domain.KindProduct,
		ID:              "p-1",
		ExpectedVersion: 7,
		Fields:          &domain.ProductFields{Title: "stale"},
	})
	assert.ErrorIs(t, err, domain.ErrVersionMismatch)
	require.NotNil(t, current)
	assert.Equal(t, 1, current.Version)
	assert.Equal(t, "mug", current.Fields.(*domain.ProductFields).Title)
}

func TestUpdateIfMatchSoftDelete(t *testing.T) {
	store := NewRecordStore()
	require.NoError(t, store.Insert(context.Background(), newProduct("p-1")))

	deleted, err := store.UpdateIfMatch(context.Background(), repository.Match{
		Kind:            domain.KindProduct,
		ID:              "p-1",
		ExpectedVersion: 1,
		Fields:          &domain.ProductFields{Title: "mug"},
		Delete:          true,
	})
	require.NoError(t, err)
	assert.True(t, deleted.Deleted())
	assert.Equal(t, 2, deleted.Version)

	// Record stays readable after the delete.
	stored, err := store.Get(context.Background(), domain.KindProduct, "p-1")
	require.NoError(t, err)
	assert.True(t, stored.Deleted())
}

func TestVersionsNewestFirst(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, newProduct("p-1")))

	for v := 1; v <= 3; v++ {
		_, err := store.UpdateIfMatch(ctx, repository.Match{
			Kind:            domain.KindProduct,
			ID:              "p-1",
			ExpectedVersion: v,
			Fields:          &domain.ProductFields{Title: fmt.Sprintf("rev-%d", v+1)},
		})
		require.NoError(t, err)
	}

	history, err := store.Versions(ctx, domain.KindProduct, "p-1", 10)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, 4, history[0].Version)
	assert.Equal(t, 1, history[3].Version)
	assert.Equal(t, "rev-4", history[0].Fields.(*domain.ProductFields).Title)
}

func TestVersionsLimit(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, newProduct("p-1")))
	_, err := store.UpdateIfMatch(ctx, repository.Match{
		Kind:            domain.KindProduct,
		ID:              "p-1",
		ExpectedVersion: 1,
		Fields:          &domain.ProductFields{Title: "rev-2"},
	})
	require.NoError(t, err)

	history, err := store.Versions(ctx, domain.KindProduct, "p-1", 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].Version)
}

func TestConcurrentSwapsOnlyOneWins(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, newProduct("p-1")))

	const writers = 16
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		losses int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.UpdateIfMatch(ctx, repository.Match{
				Kind:            domain.KindProduct,
				ID:              "p-1",
				ExpectedVersion: 1,
				Fields:          &domain.ProductFields{Title: fmt.Sprintf("writer-%d", i)},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else {
				losses++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, writers-1, losses)

	stored, err := store.Get(ctx, domain.KindProduct, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, newProduct("p-1")))

	first, err := store.Get(ctx, domain.KindProduct, "p-1")
	require.NoError(t, err)
	first.Fields.(*domain.ProductFields).Title = "mutated"

	second, err := store.Get(ctx, domain.KindProduct, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "mug", second.Fields.(*domain.ProductFields).Title)
}
