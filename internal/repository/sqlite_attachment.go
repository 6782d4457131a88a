package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskdeck/internal/db"
	"github.com/alexanderramin/taskdeck/internal/domain"
)

const attachmentColumns = `id, todo_id, file_name, stored_name, path, mime_type, size, created_at`

// SQLiteAttachmentRepo implements AttachmentRepo using a SQLite database.
type SQLiteAttachmentRepo struct {
	db db.DBTX
}

func NewSQLiteAttachmentRepo(conn db.DBTX) *SQLiteAttachmentRepo {
	return &SQLiteAttachmentRepo{db: conn}
}

func (r *SQLiteAttachmentRepo) Create(ctx context.Context, a *domain.Attachment) error {
	query := `INSERT INTO todo_attachments (todo_id, file_name, stored_name, path, mime_type, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		a.TodoID, a.FileName, a.StoredName, a.Path, a.MimeType, a.Size, formatTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting attachment: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading attachment id: %w", err)
	}
	return nil
}

func (r *SQLiteAttachmentRepo) GetByID(ctx context.Context, id int64) (*domain.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM todo_attachments WHERE id = ?`
	a, err := scanAttachment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attachment %d: %w", id, ErrNotFound)
	}
	return a, err
}

func (r *SQLiteAttachmentRepo) ListByTodo(ctx context.Context, todoID int64) ([]*domain.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM todo_attachments WHERE todo_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, todoID)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	defer rows.Close()

	var out []*domain.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachments: %w", err)
	}
	return out, nil
}

func (r *SQLiteAttachmentRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todo_attachments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting attachment: %w", err)
	}
	return requireAffected(res, "attachment", id)
}

func scanAttachment(row rowScanner) (*domain.Attachment, error) {
	var a domain.Attachment
	var createdAt string
	err := row.Scan(&a.ID, &a.TodoID, &a.FileName, &a.StoredName, &a.Path, &a.MimeType, &a.Size, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning attachment: %w", err)
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &a, nil
}
