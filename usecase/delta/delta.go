package delta

import (
	"context"

	"go.uber.org/zap"

	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/repository"
)

// UseCase answers "what changed since cursor" queries for polling
// clients. It is a pure read over the ledger: safe to call arbitrarily
// often and concurrently, and it never mutates ledger state.
type UseCase struct {
	ledger   repository.ChangeLedger
	presence repository.PresenceRepository
	logger   *zap.Logger
}

// New builds the delta service. presence may be nil when no viewer
// tracking backend is configured.
func New(ledger repository.ChangeLedger, presence repository.PresenceRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		ledger:   ledger,
		presence: presence,
		logger:   logger,
	}
}

// GetChanges returns events after since, grouped by entity kind, plus
// the new cursor. The cursor comes back even when nothing changed so the
// poller always advances and never rescans the same range. A nil since
// means "start watching from now": no replay, just the current head.
func (uc *UseCase) GetChanges(ctx context.Context, since *domain.Cursor, actor string) (*domain.DeltaBatch, error) {
	uc.touch(ctx, actor)

	if since == nil {
		head, err := uc.ledger.Head(ctx)
		if err != nil {
			return nil, err
		}
		return emptyBatch(head), nil
	}

	events, head, err := uc.ledger.Since(ctx, *since)
	if err != nil {
		return nil, err
	}

	batch := emptyBatch(head)
	for _, event := range events {
		switch event.EntityKind {
		case domain.KindProduct:
			batch.Changes.Products = append(batch.Changes.Products, domain.ProductChange{
				ProductID: event.EntityID,
				UpdatedAt: event.UpdatedAt,
			})
		case domain.KindOrder:
			batch.Changes.Orders = append(batch.Changes.Orders, domain.OrderChange{
				OrderID:   event.EntityID,
				UpdatedAt: event.UpdatedAt,
				Status:    event.Status,
			})
		}
		batch.Changes.Audit = append(batch.Changes.Audit, event)
	}
	return batch, nil
}

// ActiveViewers lists actors with a live presence entry.
func (uc *UseCase) ActiveViewers(ctx context.Context) ([]string, error) {
	if uc.presence == nil {
		return nil, nil
	}
	return uc.presence.Active(ctx)
}

// touch refreshes the polling actor's presence entry. Best effort only:
// presence must never fail a poll.
func (uc *UseCase) touch(ctx context.Context, actor string) {
	if uc.presence == nil || actor == "" {
		return
	}
	if err := uc.presence.Touch(ctx, actor); err != nil {
		uc.logger.Warn("presence touch failed", zap.String("actor", actor), zap.Error(err))
	}
}

func emptyBatch(head domain.Cursor) *domain.DeltaBatch {
	return &domain.DeltaBatch{
		Changes: domain.DeltaChanges{
			Products: []domain.ProductChange{},
			Orders:   []domain.OrderChange{},
			Audit:    []domain.ChangeEvent{},
		},
		Cursor: head,
	}
}
