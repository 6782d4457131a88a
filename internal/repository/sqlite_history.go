package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/taskdeck/internal/db"
	"github.com/alexanderramin/taskdeck/internal/domain"
)

// SQLiteHistoryRepo implements HistoryRepo using a SQLite database.
type SQLiteHistoryRepo struct {
	db db.DBTX
}

func NewSQLiteHistoryRepo(conn db.DBTX) *SQLiteHistoryRepo {
	return &SQLiteHistoryRepo{db: conn}
}

func (r *SQLiteHistoryRepo) Add(ctx context.Context, e *domain.HistoryEntry) error {
	query := `INSERT INTO todo_history (todo_id, field_name, old_value, new_value, changed_at)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, e.TodoID, e.Field, e.OldValue, e.NewValue, formatTime(e.ChangedAt))
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading history id: %w", err)
	}
	return nil
}

// ListByTodo returns the changes to a todo, newest first.
func (r *SQLiteHistoryRepo) ListByTodo(ctx context.Context, todoID int64) ([]*domain.HistoryEntry, error) {
	query := `SELECT id, todo_id, field_name, old_value, new_value, changed_at
		FROM todo_history WHERE todo_id = ? ORDER BY changed_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, todoID)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var changedAt string
		if err := rows.Scan(&e.ID, &e.TodoID, &e.Field, &e.OldValue, &e.NewValue, &changedAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		if e.ChangedAt, err = parseTime(changedAt); err != nil {
			return nil, fmt.Errorf("parsing changed_at: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return entries, nil
}

// SQLiteCommentRepo implements CommentRepo using a SQLite database.
type SQLiteCommentRepo struct {
	db db.DBTX
}

func NewSQLiteCommentRepo(conn db.DBTX) *SQLiteCommentRepo {
	return &SQLiteCommentRepo{db: conn}
}

func (r *SQLiteCommentRepo) Add(ctx context.Context, c *domain.Comment) error {
	query := `INSERT INTO todo_comments (todo_id, body, is_assistant, created_at) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, c.TodoID, c.Body, boolToInt(c.IsAssistant), formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading comment id: %w", err)
	}
	return nil
}

// ListByTodo returns a todo's comments, oldest first.
func (r *SQLiteCommentRepo) ListByTodo(ctx context.Context, todoID int64) ([]*domain.Comment, error) {
	query := `SELECT id, todo_id, body, is_assistant, created_at
		FROM todo_comments WHERE todo_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, todoID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()
	return scanComments(rows)
}

func scanComments(rows *sql.Rows) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		var assistant int
		var createdAt string
		if err := rows.Scan(&c.ID, &c.TodoID, &c.Body, &assistant, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		c.IsAssistant = intToBool(assistant)
		var err error
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}
	return comments, nil
}
