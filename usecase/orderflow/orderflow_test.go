package orderflow

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/internal/infrastructure/ledger"
	"github.com/sellerhub/backend/repository/memory"
	"github.com/sellerhub/backend/usecase/arbiter"
)

func newFixture(t *testing.T, policy domain.TransitionPolicy) (*UseCase, *arbiter.UseCase, *ledger.Store) {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	arb := arbiter.New(memory.NewRecordStore(), store, nil)
	return New(arb, policy, nil), arb, store
}

func createOrder(t *testing.T, arb *arbiter.UseCase, status domain.OrderStatus) *domain.Record {
	t.Helper()
	order, err := arb.Create(context.Background(), domain.KindOrder, "",
		&domain.OrderFields{CustomerID: "c-1", Status: status}, "system")
	require.NoError(t, err)
	return order
}

func TestApplyTransitionForward(t *testing.T) {
	flow, arb, led := newFixture(t, domain.TransitionPolicy{})
	order := createOrder(t, arb, domain.StatusPending)

	updated, err := flow.ApplyTransition(context.Background(), order.ID, domain.StatusProcessing, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, updated.Status())
	assert.Equal(t, 2, updated.Version)
	assert.NotNil(t, updated.Fields.(*domain.OrderFields).ApprovedAt)

	events, _, err := led.Since(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.ChangeStatusChange, events[1].Kind)
	assert.Equal(t, domain.StatusProcessing, events[1].Status)
}

func TestApplyTransitionBackward(t *testing.T) {
	flow, arb, _ := newFixture(t, domain.TransitionPolicy{})
	order := createOrder(t, arb, domain.StatusProcessing)

	updated, err := flow.ApplyTransition(context.Background(), order.ID, domain.StatusPending, "alice", "mispicked")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, updated.Status())
	assert.Equal(t, "mispicked", updated.Fields.(*domain.OrderFields).Notes)
}

func TestApplyTransitionSkipRejected(t *testing.T) {
	flow, arb, led := newFixture(t, domain.TransitionPolicy{})
	order := createOrder(t, arb, domain.StatusPending)

	_, err := flow.ApplyTransition(context.Background(), order.ID, domain.StatusDelivered, "alice", "")
	var tErr *domain.TransitionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, domain.StatusPending, tErr.From)
	assert.Equal(t, domain.StatusDelivered, tErr.To)

	// Rejected transitions write nothing.
	current, err := flow.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.Version)

	events, _, err := led.Since(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestLifecycleTimestamps(t *testing.T) {
	flow, arb, _ := newFixture(t, domain.TransitionPolicy{})
	order := createOrder(t, arb, domain.StatusPending)
	ctx := context.Background()

	_, err := flow.ApplyTransition(ctx, order.ID, domain.StatusProcessing, "alice", "")
	require.NoError(t, err)
	_, err = flow.ApplyTransition(ctx, order.ID, domain.StatusShipped, "alice", "")
	require.NoError(t, err)
	updated, err := flow.ApplyTransition(ctx, order.ID, domain.StatusDelivered, "alice", "")
	require.NoError(t, err)

	fields := updated.Fields.(*domain.OrderFields)
	require.NotNil(t, fields.ApprovedAt)
	require.NotNil(t, fields.ShippedAt)
	require.NotNil(t, fields.DeliveredAt)
	assert.False(t, fields.DeliveredAt.Before(*fields.ApprovedAt))
}

func TestCancelFromAnyActiveState(t *testing.T) {
	for _, from := range []domain.OrderStatus{domain.StatusPending, domain.StatusProcessing, domain.StatusShipped, domain.StatusDelivered} {
		flow, arb, _ := newFixture(t, domain.TransitionPolicy{})
		order := createOrder(t, arb, from)

		updated, err := flow.Cancel(context.Background(), order.ID, "alice", "customer request")
		require.NoError(t, err, "cancel from %s", from)
		assert.Equal(t, domain.StatusCanceled, updated.Status())
	}
}

func TestTerminalStatesAbsorb(t *testing.T) {
	flow, arb, _ := newFixture(t, domain.TransitionPolicy{})
	order := createOrder(t, arb, domain.StatusPending)
	ctx := context.Background()

	_, err := flow.Cancel(ctx, order.ID, "alice", "")
	require.NoError(t, err)

	_, err = flow.ApplyTransition(ctx, order.ID, domain.StatusProcessing, "alice", "")
	var tErr *domain.TransitionError
	require.ErrorAs(t, err, &tErr)

	_, err = flow.Refund(ctx, order.ID, "alice", "")
	require.ErrorAs(t, err, &tErr)
}

func TestRefundPolicyGate(t *testing.T) {
	flow, arb, _ := newFixture(t, domain.TransitionPolicy{RefundRequiresDelivered: true})
	ctx := context.Background()

	shipped := createOrder(t, arb, domain.StatusShipped)
	_, err := flow.Refund(ctx, shipped.ID, "alice", "")
	var tErr *domain.TransitionError
	require.ErrorAs(t, err, &tErr)

	delivered := createOrder(t, arb, domain.StatusDelivered)
	updated, err := flow.Refund(ctx, delivered.ID, "alice", "damaged on arrival")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, updated.Status())
}

func TestApplyTransitionUnknownStatus(t *testing.T) {
	flow, arb, _ := newFixture(t, domain.TransitionPolicy{})
	order := createOrder(t, arb, domain.StatusPending)

	_, err := flow.ApplyTransition(context.Background(), order.ID, domain.OrderStatus("teleported"), "alice", "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestGetMissingOrder(t *testing.T) {
	flow, _, _ := newFixture(t, domain.TransitionPolicy{})

	_, err := flow.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = flow.ApplyTransition(context.Background(), "ghost", domain.StatusProcessing, "alice", "")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestHistoryTracksStatusProgression(t *testing.T) {
	flow, arb, _ := newFixture(t, domain.TransitionPolicy{})
	order := createOrder(t, arb, domain.StatusPending)
	ctx := context.Background()

	_, err := flow.ApplyTransition(ctx, order.ID, domain.StatusProcessing, "alice", "")
	require.NoError(t, err)
	_, err = flow.ApplyTransition(ctx, order.ID, domain.StatusShipped, "bob", "")
	require.NoError(t, err)

	history, err := flow.History(ctx, order.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, domain.StatusShipped, history[0].Status())
	assert.Equal(t, domain.StatusProcessing, history[1].Status())
	assert.Equal(t, domain.StatusPending, history[2].Status())
	assert.Equal(t, "bob", history[0].UpdatedBy)
}
