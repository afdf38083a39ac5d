package repository

import (
	"context"

	"github.com/sellerhub/backend/domain"
)

// RecordStore is the authoritative keyed storage for versioned records.
//
// UpdateIfMatch is the compare-and-swap primitive: it must be atomic per
// (kind, id) so that no two concurrent callers can both match the same
// expected version. Reads of other ids are never blocked by an in-flight
// write, and a read never observes a partially applied mutation.
type RecordStore interface {
	// Get returns the record or domain.ErrRecordNotFound.
	Get(ctx context.Context, kind domain.EntityKind, id string) (*domain.Record, error)

	// Insert stores a new record at version 1. Returns
	// domain.ErrDuplicateKey when the id is already taken for the kind.
	Insert(ctx context.Context, record *domain.Record) error

	// UpdateIfMatch replaces the record's fields when expectedVersion
	// matches the stored version, bumping the version by exactly one and
	// stamping updated_at / updated_by. On a version mismatch it returns
	// the CURRENT record together with domain.ErrVersionMismatch so
	// callers can build a conflict report without a second read.
	// Match.Delete marks the record deleted in the same swap.
	UpdateIfMatch(ctx context.Context, m Match) (*domain.Record, error)

	// Versions returns up to limit historical snapshots of the record,
	// newest first. Snapshots are written on every successful mutation.
	Versions(ctx context.Context, kind domain.EntityKind, id string, limit int) ([]domain.Record, error)
}

// Match carries one compare-and-swap request.
type Match struct {
	Kind            domain.EntityKind
	ID              string
	ExpectedVersion int
	Fields          domain.FieldSet
	Actor           string
	Delete          bool
}
