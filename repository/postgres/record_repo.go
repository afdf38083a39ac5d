package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/repository"
)

const uniqueViolation = "23505"

type recordRepository struct {
	pool *pgxpool.Pool
}

// NewRecordRepository returns a Postgres-backed RecordStore. All records
// live in a single table keyed by (kind, id) with the typed field bag
// stored as JSONB; the version check and the write happen in one UPDATE
// so the compare-and-swap is atomic per row.
func NewRecordRepository(pool *pgxpool.Pool) repository.RecordStore {
	return &recordRepository{pool: pool}
}

func (r *recordRepository) Get(ctx context.Context, kind domain.EntityKind, id string) (*domain.Record, error) {
	const query = `
	SELECT id, kind, version, fields, created_at, updated_at, updated_by, deleted_at
	FROM records
	WHERE kind = $1 AND id = $2
	`
	row := r.pool.QueryRow(ctx, query, kind, id)
	return scanRecord(row)
}

func (r *recordRepository) Insert(ctx context.Context, record *domain.Record) error {
	if record == nil || record.Fields == nil {
		return domain.ErrInvalidPayload
	}

	fields, err := encodeFields(record.Fields)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insert = `
	INSERT INTO records (id, kind, version, fields, updated_by)
	VALUES ($1, $2, 1, $3, $4)
	RETURNING version, created_at, updated_at
	`
	err = tx.QueryRow(ctx, insert, record.ID, record.Kind, fields, record.UpdatedBy).
		Scan(&record.Version, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateKey
		}
		return err
	}

	if err := appendSnapshot(ctx, tx, record); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *recordRepository) UpdateIfMatch(ctx context.Context, m repository.Match) (*domain.Record, error) {
	fields, err := encodeFields(m.Fields)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const update = `
	UPDATE records
	SET version = version + 1,
		fields = $4,
		updated_at = NOW(),
		updated_by = $5,
		deleted_at = CASE WHEN $6 THEN NOW() ELSE deleted_at END
	WHERE kind = $1 AND id = $2 AND version = $3
	RETURNING id, kind, version, fields, created_at, updated_at, updated_by, deleted_at
	`
	row := tx.QueryRow(ctx, update, m.Kind, m.ID, m.ExpectedVersion, fields, m.Actor, m.Delete)
	updated, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			// The swap missed: either the record is absent or the
			// version moved. Fetch the current row to tell the two apart
			// and to hand the caller conflict material in one trip.
			current, getErr := r.Get(ctx, m.Kind, m.ID)
			if getErr != nil {
				return nil, getErr
			}
			return current, domain.ErrVersionMismatch
		}
		return nil, err
	}

	if err := appendSnapshot(ctx, tx, updated); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *recordRepository) Versions(ctx context.Context, kind domain.EntityKind, id string, limit int) ([]domain.Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	const query = `
	SELECT record_id, kind, version, fields, updated_at, updated_by
	FROM record_versions
	WHERE kind = $1 AND record_id = $2
	ORDER BY version DESC
	LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, kind, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []domain.Record
	for rows.Next() {
		var (
			record domain.Record
			raw    []byte
		)
		if err := rows.Scan(&record.ID, &record.Kind, &record.Version, &raw, &record.UpdatedAt, &record.UpdatedBy); err != nil {
			return nil, err
		}
		decoded, err := domain.DecodeFields(record.Kind, raw)
		if err != nil {
			return nil, err
		}
		record.Fields = decoded
		versions = append(versions, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		if _, err := r.Get(ctx, kind, id); err != nil {
			return nil, err
		}
	}
	return versions, nil
}

func appendSnapshot(ctx context.Context, tx pgx.Tx, record *domain.Record) error {
	fields, err := encodeFields(record.Fields)
	if err != nil {
		return err
	}
	const insert = `
	INSERT INTO record_versions (record_id, kind, version, fields, updated_at, updated_by)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, insert, record.ID, record.Kind, record.Version, fields, record.UpdatedAt, record.UpdatedBy)
	return err
}

func scanRecord(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Record, error) {
	var (
		record domain.Record
		raw    []byte
	)
	if err := row.Scan(
		&record.ID,
		&record.Kind,
		&record.Version,
		&raw,
		&record.CreatedAt,
		&record.UpdatedAt,
		&record.UpdatedBy,
		&record.DeletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	fields, err := domain.DecodeFields(record.Kind, raw)
	if err != nil {
		return nil, err
	}
	record.Fields = fields
	return &record, nil
}
