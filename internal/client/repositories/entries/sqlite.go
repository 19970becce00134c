package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mindvault/internal/client/models"
	"github.com/dmitrijs2005/mindvault/internal/common"
	"github.com/dmitrijs2005/mindvault/internal/dbx"
)

const selectColumns = `id, title, content, mood, is_private, is_encrypted, encryption_version, created_at, updated_at, deleted`

// SQLiteRepository implements Repository over a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to db.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.Entry) error {
	query := `INSERT INTO journal_entries (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Title, e.Content, nullInt(e.Mood),
		e.IsPrivate, e.IsEncrypted, nullInt(e.EncryptionVersion),
		toMillis(e.CreatedAt), toMillis(e.UpdatedAt), e.Deleted,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, e *models.Entry) error {
	query := `UPDATE journal_entries
		SET title = ?, content = ?, mood = ?, is_private = ?, is_encrypted = ?,
			encryption_version = ?, updated_at = ?
		WHERE id = ? AND deleted = 0`

	res, err := r.db.ExecContext(ctx, query,
		e.Title, e.Content, nullInt(e.Mood), e.IsPrivate, e.IsEncrypted,
		nullInt(e.EncryptionVersion), toMillis(e.UpdatedAt), e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM journal_entries WHERE id = ? AND deleted = 0`, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry %s: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Entry, error) {
	return r.query(ctx, `WHERE deleted = 0 ORDER BY created_at DESC, id`)
}

func (r *SQLiteRepository) ListEncrypted(ctx context.Context) ([]*models.Entry, error) {
	return r.query(ctx, `WHERE deleted = 0 AND is_encrypted = 1 ORDER BY created_at, id`)
}

func (r *SQLiteRepository) ListNeedingEncryption(ctx context.Context) ([]*models.Entry, error) {
	return r.query(ctx, `WHERE deleted = 0 AND is_private = 1 AND is_encrypted = 0 ORDER BY created_at, id`)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE journal_entries SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0`,
		toMillis(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLiteRepository) query(ctx context.Context, where string) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM journal_entries `+where)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := []*models.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	var (
		e                models.Entry
		mood, version    sql.NullInt64
		created, updated int64
	)
	err := s.Scan(&e.ID, &e.Title, &e.Content, &mood, &e.IsPrivate, &e.IsEncrypted, &version, &created, &updated, &e.Deleted)
	if err != nil {
		return nil, err
	}
	e.Mood = fromNullInt(mood)
	e.EncryptionVersion = fromNullInt(version)
	e.CreatedAt = time.UnixMilli(created).UTC()
	e.UpdatedAt = time.UnixMilli(updated).UTC()
	return &e, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func fromNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
