package history

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateExport(ctx context.Context, e *Export) error
	GetExport(ctx context.Context, id string) (*Export, error)
	ListExports(ctx context.Context, limit int) ([]*Export, error)
	UpdateExportResult(ctx context.Context, id, status, resultPath, downloadURL, errorMsg string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const exportColumns = `id, video_id, link, start_s, end_s, status, result_path, download_url, error, created_at, updated_at`

func (r *SQLiteRepository) CreateExport(ctx context.Context, e *Export) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exports (`+exportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.VideoID, e.Link, e.StartS, e.EndS, e.Status,
		nullString(e.ResultPath), nullString(e.DownloadURL), nullString(e.Error),
		e.CreatedAt.UTC().Format(timeLayout), e.UpdatedAt.UTC().Format(timeLayout))
	return err
}

func (r *SQLiteRepository) GetExport(ctx context.Context, id string) (*Export, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+exportColumns+` FROM exports WHERE id = ?`, id)
	e, err := scanExport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *SQLiteRepository) ListExports(ctx context.Context, limit int) ([]*Export, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+exportColumns+`
		FROM exports ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []*Export
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		exports = append(exports, e)
	}
	return exports, rows.Err()
}

func (r *SQLiteRepository) UpdateExportResult(ctx context.Context, id, status, resultPath, downloadURL, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE exports
		SET status = ?, result_path = ?, download_url = ?, error = ?, updated_at = ?
		WHERE id = ?
	`, status, nullString(resultPath), nullString(downloadURL), nullString(errorMsg), time.Now().UTC().Format(timeLayout), id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(s scanner) (*Export, error) {
	var e Export
	var resultPath, downloadURL, errMsg sql.NullString
	var createdAt, updatedAt string

	if err := s.Scan(&e.ID, &e.VideoID, &e.Link, &e.StartS, &e.EndS, &e.Status,
		&resultPath, &downloadURL, &errMsg, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	e.ResultPath = resultPath.String
	e.DownloadURL = downloadURL.String
	e.Error = errMsg.String
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
