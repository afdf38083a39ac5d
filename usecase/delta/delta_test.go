package delta

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/internal/infrastructure/ledger"
)

func newFixture(t *testing.T) (*UseCase, *ledger.Store) {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, nil, nil), store
}

func appendEvent(t *testing.T, store *ledger.Store, kind domain.EntityKind, id string, status domain.OrderStatus) {
	t.Helper()
	event := &domain.ChangeEvent{
		EntityKind: kind,
		EntityID:   id,
		Version:    1,
		Kind:       domain.ChangeUpdate,
		Status:     status,
	}
	require.NoError(t, store.Append(context.Background(), event))
}

func cursorPtr(c domain.Cursor) *domain.Cursor { return &c }

func TestGetChangesNilCursorWatchesFromNow(t *testing.T) {
	uc, store := newFixture(t)
	ctx := context.Background()

	appendEvent(t, store, domain.KindProduct, "p-1", "")
	appendEvent(t, store, domain.KindOrder, "o-1", domain.StatusPending)

	batch, err := uc.GetChanges(ctx, nil, "alice")
	require.NoError(t, err)
	assert.True(t, batch.Changes.Empty())
	assert.Equal(t, domain.Cursor(2), batch.Cursor)

	// The returned cursor picks up only later writes.
	appendEvent(t, store, domain.KindProduct, "p-2", "")
	next, err := uc.GetChanges(ctx, cursorPtr(batch.Cursor), "alice")
	require.NoError(t, err)
	require.Len(t, next.Changes.Products, 1)
	assert.Equal(t, "p-2", next.Changes.Products[0].ProductID)
}

func TestGetChangesGroupsByEntityKind(t *testing.T) {
	uc, store := newFixture(t)
	ctx := context.Background()

	appendEvent(t, store, domain.KindProduct, "p-1", "")
	appendEvent(t, store, domain.KindOrder, "o-1", domain.StatusProcessing)
	appendEvent(t, store, domain.KindProduct, "p-2", "")

	batch, err := uc.GetChanges(ctx, cursorPtr(0), "alice")
	require.NoError(t, err)
	require.Len(t, batch.Changes.Products, 2)
	require.Len(t, batch.Changes.Orders, 1)
	require.Len(t, batch.Changes.Audit, 3)
	assert.Equal(t, "o-1", batch.Changes.Orders[0].OrderID)
	assert.Equal(t, domain.StatusProcessing, batch.Changes.Orders[0].Status)
	assert.Equal(t, domain.Cursor(3), batch.Cursor)
}

func TestGetChangesEmptyPollStillAdvancesNothing(t *testing.T) {
	uc, store := newFixture(t)
	ctx := context.Background()

	appendEvent(t, store, domain.KindProduct, "p-1", "")

	first, err := uc.GetChanges(ctx, cursorPtr(0), "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.Cursor(1), first.Cursor)

	// Polling again at the head is idempotent and keeps the cursor.
	second, err := uc.GetChanges(ctx, cursorPtr(first.Cursor), "alice")
	require.NoError(t, err)
	assert.True(t, second.Changes.Empty())
	assert.Equal(t, first.Cursor, second.Cursor)
}

func TestGetChangesEmptyGroupsAreNotNil(t *testing.T) {
	uc, _ := newFixture(t)

	batch, err := uc.GetChanges(context.Background(), cursorPtr(0), "alice")
	require.NoError(t, err)
	assert.NotNil(t, batch.Changes.Products)
	assert.NotNil(t, batch.Changes.Orders)
	assert.NotNil(t, batch.Changes.Audit)
}

func TestActiveViewersWithoutPresenceBackend(t *testing.T) {
	uc, _ := newFixture(t)

	viewers, err := uc.ActiveViewers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, viewers)
}
