package arbiter

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/repository"
)

// UseCase is the single entry point for mutating records. It enforces
// the compare-and-swap discipline against the store and feeds every
// successful mutation into the change ledger. A mutation either applies
// completely or not at all.
type UseCase struct {
	records repository.RecordStore
	ledger  repository.ChangeLedger
	logger  *zap.Logger
}

func New(records repository.RecordStore, ledger repository.ChangeLedger, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		records: records,
		ledger:  ledger,
		logger:  logger,
	}
}

// Mutation describes one optimistic update request.
type Mutation struct {
	Kind            domain.EntityKind
	ID              string
	ExpectedVersion int
	Patch           domain.Patch
	Actor           string
	// Event overrides the ledger event kind; zero means update.
	Event domain.ChangeKind
}

// Get returns the current record.
func (uc *UseCase) Get(ctx context.Context, kind domain.EntityKind, id string) (*domain.Record, error) {
	return uc.records.Get(ctx, kind, id)
}

// Versions returns historical snapshots, newest first.
func (uc *UseCase) Versions(ctx context.Context, kind domain.EntityKind, id string, limit int) ([]domain.Record, error) {
	return uc.records.Versions(ctx, kind, id, limit)
}

// Create stores a new record at version 1. When id is empty a UUID is
// generated; a caller-supplied id that already exists yields
// domain.ErrDuplicateKey. Creation has no version check.
func (uc *UseCase) Create(ctx context.Context, kind domain.EntityKind, id string, fields domain.FieldSet, actor string) (*domain.Record, error) {
	if fields == nil || fields.Kind() != kind {
		return nil, domain.ErrInvalidPayload
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}

	record := &domain.Record{
		ID:        id,
		Kind:      kind,
		Fields:    fields.Clone(),
		UpdatedBy: actor,
	}
	if err := uc.records.Insert(ctx, record); err != nil {
		return nil, err
	}

	if err := uc.append(ctx, domain.ChangeCreate, record, actor); err != nil {
		return nil, err
	}
	return record, nil
}

// Mutate applies a patch when the caller's expected version matches the
// stored one. A lost compare-and-swap returns a ConflictError carrying
// the current record values and the caller's intended values; nothing is
// written in that case and the version is not consumed.
func (uc *UseCase) Mutate(ctx context.Context, m Mutation) (*domain.Record, error) {
	if m.Patch == nil || m.Patch.Kind() != m.Kind {
		return nil, domain.ErrInvalidPayload
	}
	if err := m.Patch.Validate(); err != nil {
		return nil, err
	}

	current, err := uc.records.Get(ctx, m.Kind, m.ID)
	if err != nil {
		return nil, err
	}

	fields, err := m.Patch.Apply(current.Fields)
	if err != nil {
		return nil, err
	}

	updated, err := uc.records.UpdateIfMatch(ctx, repository.Match{
		Kind:            m.Kind,
		ID:              m.ID,
		ExpectedVersion: m.ExpectedVersion,
		Fields:          fields,
		Actor:           m.Actor,
	})
	if err != nil {
		return nil, uc.arbitrate(updated, m.ExpectedVersion, m.Patch, err)
	}

	event := m.Event
	if event == "" {
		event = domain.ChangeUpdate
	}
	if err := uc.append(ctx, event, updated, m.Actor); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete marks a record deleted under the same compare-and-swap rules.
// The record and its history are retained; only a delete event is
// emitted for downstream consumers.
func (uc *UseCase) Delete(ctx context.Context, kind domain.EntityKind, id string, expectedVersion int, actor string) (*domain.Record, error) {
	current, err := uc.records.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	updated, err := uc.records.UpdateIfMatch(ctx, repository.Match{
		Kind:            kind,
		ID:              id,
		ExpectedVersion: expectedVersion,
		Fields:          current.Fields,
		Actor:           actor,
		Delete:          true,
	})
	if err != nil {
		return nil, uc.arbitrate(updated, expectedVersion, nil, err)
	}

	if err := uc.append(ctx, domain.ChangeDelete, updated, actor); err != nil {
		return nil, err
	}
	return updated, nil
}

// arbitrate converts a failed swap into the caller-facing error. The
// store hands back the current record on a mismatch, which becomes the
// conflict report's current side.
func (uc *UseCase) arbitrate(current *domain.Record, expectedVersion int, patch domain.Patch, err error) error {
	if !errors.Is(err, domain.ErrVersionMismatch) || current == nil {
		return err
	}

	submitted := current.Fields.Clone()
	if patch != nil {
		submitted = patch.SubmittedValues(current.Fields)
	}

	return &domain.ConflictError{Report: domain.ConflictReport{
		EntityKind:      current.Kind,
		EntityID:        current.ID,
		CurrentVersion:  current.Version,
		ExpectedVersion: expectedVersion,
		CurrentValues:   current.Fields.Clone(),
		SubmittedValues: submitted,
	}}
}

func (uc *UseCase) append(ctx context.Context, kind domain.ChangeKind, record *domain.Record, actor string) error {
	event := domain.NewChangeEvent(kind, record, actor)
	if err := uc.ledger.Append(ctx, event); err != nil {
		uc.logger.Error("ledger append failed",
			zap.String("entity_kind", string(record.Kind)),
			zap.String("entity_id", record.ID),
			zap.Error(err))
		return domain.WrapError(domain.ErrCodeInternal, "change ledger append failed", err)
	}
	return nil
}
