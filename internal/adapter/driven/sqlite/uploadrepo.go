package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/dropvault/internal/domain/model"
	"github.com/ericfisherdev/dropvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UploadStore = (*UploadRepo)(nil)

// UploadRepo is the SQLite implementation of the UploadStore port interface.
type UploadRepo struct {
	db *DB
}

// NewUploadRepo creates a new UploadRepo backed by the given DB.
func NewUploadRepo(db *DB) *UploadRepo {
	return &UploadRepo{db: db}
}

// Record inserts an upload, or refreshes its name and size if it already exists.
// An existing row keeps its created_at.
func (r *UploadRepo) Record(ctx context.Context, rec model.FileRecord) error {
	const query = `INSERT INTO uploads (id, name, size, created_at, completed_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, size = excluded.size`

	_, err := r.db.Writer.ExecContext(ctx, query,
		rec.ID,
		rec.Name,
		rec.Size,
		formatTime(rec.CreatedAt),
		nullableTime(rec.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("record upload %q: %w", rec.ID, err)
	}
	return nil
}

// MarkComplete sets completed_at for an upload. Unknown ids are ignored.
func (r *UploadRepo) MarkComplete(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE uploads SET completed_at = ? WHERE id = ?`
	_, err := r.db.Writer.ExecContext(ctx, query, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("mark upload %q complete: %w", id, err)
	}
	return nil
}

// Get returns the upload with the given id, or nil if it does not exist.
func (r *UploadRepo) Get(ctx context.Context, id string) (*model.FileRecord, error) {
	const query = `SELECT id, name, size, created_at, completed_at FROM uploads WHERE id = ?`
	rec, err := scanUpload(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get upload %q: %w", id, err)
	}
	return &rec, nil
}

// ListCreatedBefore returns uploads created strictly before cutoff, oldest first.
func (r *UploadRepo) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.FileRecord, error) {
	const query = `SELECT id, name, size, created_at, completed_at FROM uploads
		WHERE created_at < ? ORDER BY created_at`

	rows, err := r.db.Reader.QueryContext(ctx, query, formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("list uploads before %s: %w", cutoff, err)
	}
	defer rows.Close()

	var recs []model.FileRecord
	for rows.Next() {
		rec, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}

	return recs, nil
}

// Delete removes the upload row with the given id.
func (r *UploadRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM uploads WHERE id = ?`
	_, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete upload %q: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUpload(row rowScanner) (model.FileRecord, error) {
	var (
		rec         model.FileRecord
		createdAt   string
		completedAt sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Size, &createdAt, &completedAt); err != nil {
		return model.FileRecord{}, err
	}

	var err error
	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("parse created_at: %w", err)
	}

	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return model.FileRecord{}, fmt.Errorf("parse completed_at: %w", err)
		}
		rec.CompletedAt = &t
	}

	return rec, nil
}

func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
