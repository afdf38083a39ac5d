package domain

import "fmt"

// OrderStatus is the order lifecycle state. The first four statuses are
// totally ordered; canceled and refunded are absorbing terminal states.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCanceled   OrderStatus = "canceled"
	StatusRefunded   OrderStatus = "refunded"
)

var statusIndex = map[OrderStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

func (s OrderStatus) Valid() bool {
	if _, ok := statusIndex[s]; ok {
		return true
	}
	return s == StatusCanceled || s == StatusRefunded
}

// Terminal reports whether no further transition is permitted from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusCanceled || s == StatusRefunded
}

// TransitionPolicy decides which status transitions are legal.
//
// The escape clause admits cancel/refund from any non-terminal state,
// matching observed production behavior; RefundRequiresDelivered narrows
// refunds to delivered orders for deployments that want the stricter rule.
type TransitionPolicy struct {
	RefundRequiresDelivered bool
}

func (p TransitionPolicy) CanTransition(current, target OrderStatus) bool {
	if !current.Valid() || !target.Valid() {
		return false
	}
	if current.Terminal() {
		return false
	}
	if target == StatusRefunded && p.RefundRequiresDelivered {
		return current == StatusDelivered
	}
	if target.Terminal() {
		return true
	}
	step := statusIndex[target] - statusIndex[current]
	return step == 1 || step == -1
}

// TransitionError reports a status change rejected by the policy. It is
// deliberately distinct from a version conflict: the caller holds a
// current view of the order, the requested target is simply unreachable.
type TransitionError struct {
	OrderID string
	From    OrderStatus
	To      OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: illegal transition %s -> %s", e.OrderID, e.From, e.To)
}

func (e *TransitionError) Code() ErrorCode {
	return ErrCodeIllegalTransition
}
