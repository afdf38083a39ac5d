package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/repository"
)

const defaultHistoryDepth = 50

type recordKey struct {
	kind domain.EntityKind
	id   string
}

// entry guards one record. Per-entry locking keeps the compare-and-swap
// exclusive per id without serializing writers of unrelated records.
type entry struct {
	mu      sync.Mutex
	record  domain.Record
	history []domain.Record
}

// RecordStore is the in-memory RecordStore used in development mode and
// as the reference implementation of the CAS contract in tests.
type RecordStore struct {
	mu           sync.RWMutex
	entries      map[recordKey]*entry
	historyDepth int
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		entries:      make(map[recordKey]*entry),
		historyDepth: defaultHistoryDepth,
	}
}

func (s *RecordStore) Get(ctx context.Context, kind domain.EntityKind, id string) (*domain.Record, error) {
	e := s.lookup(kind, id)
	if e == nil {
		return nil, domain.ErrRecordNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	record := copyRecord(e.record)
	return &record, nil
}

func (s *RecordStore) Insert(ctx context.Context, record *domain.Record) error {
	if record == nil || record.Fields == nil {
		return domain.ErrInvalidPayload
	}
	key := recordKey{kind: record.Kind, id: record.ID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; exists {
		return domain.ErrDuplicateKey
	}

	now := time.Now().UTC()
	record.Version = 1
	record.CreatedAt = now
	record.UpdatedAt = now
	record.DeletedAt = nil

	stored := copyRecord(*record)
	s.entries[key] = &entry{
		record:  stored,
		history: []domain.Record{copyRecord(stored)},
	}
	return nil
}

func (s *RecordStore) UpdateIfMatch(ctx context.Context, m repository.Match) (*domain.Record, error) {
	e := s.lookup(m.Kind, m.ID)
	if e == nil {
		return nil, domain.ErrRecordNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.record.Version != m.ExpectedVersion {
		current := copyRecord(e.record)
		return &current, domain.ErrVersionMismatch
	}

	e.record.Version++
	e.record.Fields = m.Fields.Clone()
	e.record.UpdatedAt = time.Now().UTC()
	e.record.UpdatedBy = m.Actor
	if m.Delete {
		deletedAt := e.record.UpdatedAt
		e.record.DeletedAt = &deletedAt
	}

	e.history = append(e.history, copyRecord(e.record))
	if len(e.history) > s.historyDepth {
		e.history = e.history[len(e.history)-s.historyDepth:]
	}

	updated := copyRecord(e.record)
	return &updated, nil
}

func (s *RecordStore) Versions(ctx context.Context, kind domain.EntityKind, id string, limit int) ([]domain.Record, error) {
	e := s.lookup(kind, id)
	if e == nil {
		return nil, domain.ErrRecordNotFound
	}
	if limit <= 0 {
		limit = 10
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var versions []domain.Record
	for i := len(e.history) - 1; i >= 0 && len(versions) < limit; i-- {
		versions = append(versions, copyRecord(e.history[i]))
	}
	return versions, nil
}

func (s *RecordStore) lookup(kind domain.EntityKind, id string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[recordKey{kind: kind, id: id}]
}

func copyRecord(r domain.Record) domain.Record {
	copied := r
	if r.Fields != nil {
		copied.Fields = r.Fields.Clone()
	}
	if r.DeletedAt != nil {
		deletedAt := *r.DeletedAt
		copied.DeletedAt = &deletedAt
	}
	return copied
}

var _ repository.RecordStore = (*RecordStore)(nil)
