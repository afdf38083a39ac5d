package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerhub/backend/domain"
)

func openStore(t *testing.T, maxBatch int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"), maxBatch)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func appendEvents(t *testing.T, store *Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		event := &domain.ChangeEvent{
			EntityKind: domain.KindProduct,
			EntityID:   "p-1",
			Version:    i + 1,
			Kind:       domain.ChangeUpdate,
		}
		require.NoError(t, store.Append(context.Background(), event))
	}
}

func TestAppendAssignsMonotonicSequence(t *testing.T) {
	store := openStore(t, 0)

	for i := 1; i <= 3; i++ {
		event := &domain.ChangeEvent{
			EntityKind: domain.KindOrder,
			EntityID:   "o-1",
			Kind:       domain.ChangeStatusChange,
		}
		require.NoError(t, store.Append(context.Background(), event))
		assert.Equal(t, domain.Cursor(i), event.Seq)
	}

	head, err := store.Head(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Cursor(3), head)
}

func TestSinceIsStrictlyAfterCursor(t *testing.T) {
	store := openStore(t, 0)
	appendEvents(t, store, 5)

	events, head, err := store.Since(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, domain.Cursor(3), events[0].Seq)
	assert.Equal(t, domain.Cursor(5), events[2].Seq)
	assert.Equal(t, domain.Cursor(5), head)
}

func TestSinceFromZeroReplaysEverything(t *testing.T) {
	store := openStore(t, 0)
	appendEvents(t, store, 4)

	events, head, err := store.Since(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, events, 4)
	assert.Equal(t, domain.Cursor(4), head)
}

func TestSinceAtHeadReturnsNothing(t *testing.T) {
	store := openStore(t, 0)
	appendEvents(t, store, 3)

	events, head, err := store.Since(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, domain.Cursor(3), head)
}

func TestSinceTruncationClampsHead(t *testing.T) {
	store := openStore(t, 2)
	appendEvents(t, store, 5)

	events, head, err := store.Since(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.Cursor(2), head)

	// Resuming from the clamped head picks up where the batch ended.
	events, head, err = store.Since(context.Background(), head)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.Cursor(3), events[0].Seq)
	assert.Equal(t, domain.Cursor(4), head)
}

func TestHeadOnEmptyLedger(t *testing.T) {
	store := openStore(t, 0)

	head, err := store.Head(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Cursor(0), head)
}

func TestSizeCountsEvents(t *testing.T) {
	store := openStore(t, 0)
	appendEvents(t, store, 7)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 7, size)
}

func TestEventFieldsSurviveStorage(t *testing.T) {
	store := openStore(t, 0)

	original := domain.NewChangeEvent(domain.ChangeStatusChange, &domain.Record{
		ID:      "o-9",
		Kind:    domain.KindOrder,
		Version: 4,
		Fields:  &domain.OrderFields{CustomerID: "c-1", Status: domain.StatusShipped},
	}, "carol")
	require.NoError(t, store.Append(context.Background(), original))

	events, _, err := store.Since(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "o-9", events[0].EntityID)
	assert.Equal(t, 4, events[0].Version)
	assert.Equal(t, domain.StatusShipped, events[0].Status)
	assert.Equal(t, "carol", events[0].Actor)
}
