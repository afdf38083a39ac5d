package orderflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/usecase/arbiter"
)

// UseCase validates and applies order status transitions. Status changes
// ride the same optimistic locking as every other mutation: the order is
// read, the policy consulted, and the write goes through the arbiter at
// the version just observed, so a concurrent editor surfaces as a
// version conflict rather than a lost update.
type UseCase struct {
	arbiter *arbiter.UseCase
	policy  domain.TransitionPolicy
	logger  *zap.Logger
}

func New(arb *arbiter.UseCase, policy domain.TransitionPolicy, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		arbiter: arb,
		policy:  policy,
		logger:  logger,
	}
}

// Get returns the current order record.
func (uc *UseCase) Get(ctx context.Context, orderID string) (*domain.Record, error) {
	order, err := uc.arbiter.Get(ctx, domain.KindOrder, orderID)
	if err != nil {
		return nil, orderErr(err)
	}
	return order, nil
}

// History returns the order's version snapshots, newest first. Each
// snapshot carries the status it held, so this doubles as the status
// history.
func (uc *UseCase) History(ctx context.Context, orderID string, limit int) ([]domain.Record, error) {
	history, err := uc.arbiter.Versions(ctx, domain.KindOrder, orderID, limit)
	if err != nil {
		return nil, orderErr(err)
	}
	return history, nil
}

// ApplyTransition moves the order to target when the transition policy
// allows it. Lifecycle timestamps are stamped alongside the status, and
// a status_change event lands in the ledger.
func (uc *UseCase) ApplyTransition(ctx context.Context, orderID string, target domain.OrderStatus, actor, notes string) (*domain.Record, error) {
	if !target.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown order status")
	}

	order, err := uc.arbiter.Get(ctx, domain.KindOrder, orderID)
	if err != nil {
		return nil, orderErr(err)
	}

	current := order.Status()
	if !uc.policy.CanTransition(current, target) {
		return nil, &domain.TransitionError{OrderID: orderID, From: current, To: target}
	}

	patch := &domain.OrderPatch{Status: &target}
	if notes != "" {
		patch.Notes = &notes
	}
	now := time.Now().UTC()
	switch target {
	case domain.StatusProcessing:
		patch.ApprovedAt = &now
	case domain.StatusShipped:
		patch.ShippedAt = &now
	case domain.StatusDelivered:
		patch.DeliveredAt = &now
	}

	updated, err := uc.arbiter.Mutate(ctx, arbiter.Mutation{
		Kind:            domain.KindOrder,
		ID:              orderID,
		ExpectedVersion: order.Version,
		Patch:           patch,
		Actor:           actor,
		Event:           domain.ChangeStatusChange,
	})
	if err != nil {
		return nil, orderErr(err)
	}

	uc.logger.Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(current)),
		zap.String("to", string(target)),
		zap.String("actor", actor))
	return updated, nil
}

// Cancel moves the order to canceled from any non-terminal state.
func (uc *UseCase) Cancel(ctx context.Context, orderID, actor, notes string) (*domain.Record, error) {
	return uc.ApplyTransition(ctx, orderID, domain.StatusCanceled, actor, notes)
}

// Refund moves the order to refunded; the transition policy decides
// whether delivery must precede it.
func (uc *UseCase) Refund(ctx context.Context, orderID, actor, notes string) (*domain.Record, error) {
	return uc.ApplyTransition(ctx, orderID, domain.StatusRefunded, actor, notes)
}

func orderErr(err error) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.ErrOrderNotFound
	}
	return err
}
