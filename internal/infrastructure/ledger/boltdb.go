package ledger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/repository"
)

const defaultMaxBatch = 200

// Store persists the change ledger in BoltDB. The bucket sequence is
// the single monotonic ordering key: every append gets a unique, final
// position, and readers run on MVCC snapshots that never wait on an
// in-flight append.
type Store struct {
	db       *bolt.DB
	bucket   []byte
	maxBatch int
}

// Open initializes the BoltDB file and ensures the events bucket exists.
func Open(path string, maxBatch int) (*Store, error) {
	if maxBatch <= 0 {
		maxBatch = defaultMaxBatch
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	bucket := []byte("events")
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:       db,
		bucket:   bucket,
		maxBatch: maxBatch,
	}, nil
}

// Append assigns the next sequence position to event and persists it.
func (s *Store) Append(ctx context.Context, event *domain.ChangeEvent) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if event == nil {
		return domain.ErrInvalidPayload
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		event.Seq = domain.Cursor(seq)

		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		return b.Put(itob(seq), payload)
	})
}

// Since returns events strictly after cursor, ascending, plus the head
// cursor seen in the same snapshot. A truncated batch clamps the head to
// the last returned event so the next poll resumes without gaps.
func (s *Store) Since(ctx context.Context, cursor domain.Cursor) ([]domain.ChangeEvent, domain.Cursor, error) {
	if s == nil || s.db == nil {
		return nil, 0, bolt.ErrDatabaseNotOpen
	}

	var (
		events []domain.ChangeEvent
		head   domain.Cursor
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		head = domain.Cursor(b.Sequence())

		c := b.Cursor()
		for k, v := c.Seek(itob(uint64(cursor) + 1)); k != nil; k, v = c.Next() {
			var event domain.ChangeEvent
			if err := json.Unmarshal(v, &event); err != nil {
				return err
			}
			events = append(events, event)
			if len(events) >= s.maxBatch {
				head = event.Seq
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return events, head, nil
}

// Head returns the current end-of-ledger cursor.
func (s *Store) Head(ctx context.Context) (domain.Cursor, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var head domain.Cursor
	err := s.db.View(func(tx *bolt.Tx) error {
		head = domain.Cursor(tx.Bucket(s.bucket).Sequence())
		return nil
	})
	return head, err
}

// Size returns the number of stored events.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func itob(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

var _ repository.ChangeLedger = (*Store)(nil)
