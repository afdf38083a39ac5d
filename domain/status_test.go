package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionAdjacency(t *testing.T) {
	policy := TransitionPolicy{}

	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusProcessing, StatusPending, true},
		{StatusShipped, StatusProcessing, true},
		{StatusDelivered, StatusShipped, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusProcessing, StatusDelivered, false},
		{StatusDelivered, StatusPending, false},
		{StatusShipped, StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, policy.CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestCanTransitionEscape(t *testing.T) {
	policy := TransitionPolicy{}

	for _, from := range []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered} {
		assert.True(t, policy.CanTransition(from, StatusCanceled), "%s -> canceled", from)
		assert.True(t, policy.CanTransition(from, StatusRefunded), "%s -> refunded", from)
	}
}

func TestCanTransitionTerminalAbsorbs(t *testing.T) {
	policy := TransitionPolicy{}

	for _, from := range []OrderStatus{StatusCanceled, StatusRefunded} {
		for _, to := range []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCanceled, StatusRefunded} {
			assert.False(t, policy.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransitionRefundPolicy(t *testing.T) {
	strict := TransitionPolicy{RefundRequiresDelivered: true}

	assert.True(t, strict.CanTransition(StatusDelivered, StatusRefunded))
	assert.False(t, strict.CanTransition(StatusPending, StatusRefunded))
	assert.False(t, strict.CanTransition(StatusShipped, StatusRefunded))

	// Cancel is unaffected by the refund gate.
	assert.True(t, strict.CanTransition(StatusShipped, StatusCanceled))
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	policy := TransitionPolicy{}

	assert.False(t, policy.CanTransition(StatusPending, OrderStatus("archived")))
	assert.False(t, policy.CanTransition(OrderStatus(""), StatusProcessing))
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCanceled.Terminal())
	assert.True(t, StatusRefunded.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusDelivered.Terminal())
}
