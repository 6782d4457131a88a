package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/taskdeck/internal/db"
	"github.com/alexanderramin/taskdeck/internal/domain"
)

// SQLiteContinuationRepo implements ContinuationRepo using a SQLite database.
type SQLiteContinuationRepo struct {
	db db.DBTX
}

func NewSQLiteContinuationRepo(conn db.DBTX) *SQLiteContinuationRepo {
	return &SQLiteContinuationRepo{db: conn}
}

func (r *SQLiteContinuationRepo) Create(ctx context.Context, c *domain.Continuation) error {
	query := `INSERT INTO todo_continuations (original_todo_id, continued_todo_id, reason, notes, created_at)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, c.OriginalID, c.ContinuedID, c.Reason, c.Notes, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting continuation: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading continuation id: %w", err)
	}
	return nil
}

func (r *SQLiteContinuationRepo) ListByOriginal(ctx context.Context, originalID int64) ([]*domain.Continuation, error) {
	query := `SELECT id, original_todo_id, continued_todo_id, reason, notes, created_at
		FROM todo_continuations WHERE original_todo_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, originalID)
	if err != nil {
		return nil, fmt.Errorf("listing continuations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Continuation
	for rows.Next() {
		var c domain.Continuation
		var createdAt string
		if err := rows.Scan(&c.ID, &c.OriginalID, &c.ContinuedID, &c.Reason, &c.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning continuation: %w", err)
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating continuations: %w", err)
	}
	return out, nil
}
