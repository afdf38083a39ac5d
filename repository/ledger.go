package repository

import (
	"context"

	"github.com/sellerhub/backend/domain"
)

// ChangeLedger is the append-only, totally ordered log of mutation
// events across all entity kinds. Appends are the one serialization
// point in the system: every event gets a unique, final sequence
// position from a single monotonic counter. Queries are snapshot reads
// and never wait on an in-flight append.
type ChangeLedger interface {
	// Append assigns the next sequence position to event and persists
	// it. Events are immutable once appended.
	Append(ctx context.Context, event *domain.ChangeEvent) error

	// Since returns events with sequence strictly greater than cursor,
	// ascending, plus the head cursor observed in the same snapshot.
	// When the batch is truncated the head clamps to the last returned
	// event, so a poller resuming from it never skips entries.
	Since(ctx context.Context, cursor domain.Cursor) ([]domain.ChangeEvent, domain.Cursor, error)

	// Head returns the current end-of-ledger cursor.
	Head(ctx context.Context) (domain.Cursor, error)
}
