package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskdeck/internal/db"
	"github.com/alexanderramin/taskdeck/internal/domain"
)

// todoColumns is the canonical SELECT column list for todos.
const todoColumns = `id, title, description, scope, status, priority,
		working_directory, assigned_to, assistant_mode,
		assistant_notes, assistant_output, related_files, tags,
		due_date, completed_at, estimated_hours, actual_hours,
		plan_html, plan_structure, plan_created_at, is_planning_mode,
		version, version_history, parent_todo_id, continuation_count,
		created_at, updated_at`

// priorityRankSQL orders priorities low..critical as 1..4.
const priorityRankSQL = `CASE priority WHEN 'critical' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END`

// orderColumns whitelists the sort keys a caller may request.
var orderColumns = map[string]string{
	"":           "created_at",
	"id":         "id",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
	"status":     "status",
	"scope":      "scope",
	"due_date":   "due_date",
	"priority":   priorityRankSQL,
	"version":    "version",
}

// SQLiteTodoRepo implements TodoRepo using a SQLite database.
type SQLiteTodoRepo struct {
	db db.DBTX
}

// NewSQLiteTodoRepo creates a new SQLiteTodoRepo.
func NewSQLiteTodoRepo(conn db.DBTX) *SQLiteTodoRepo {
	return &SQLiteTodoRepo{db: conn}
}

func (r *SQLiteTodoRepo) Create(ctx context.Context, t *domain.Todo) error {
	history, err := encodeVersionHistory(t.VersionHistory)
	if err != nil {
		return err
	}
	query := `INSERT INTO todos (title, description, scope, status, priority,
		working_directory, assigned_to, assistant_mode,
		assistant_notes, assistant_output, related_files, tags,
		due_date, completed_at, estimated_hours, actual_hours,
		plan_html, plan_structure, plan_created_at, is_planning_mode,
		version, version_history, parent_todo_id, continuation_count,
		created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		t.Title,
		t.Description,
		string(t.Scope),
		string(t.Status),
		string(t.Priority),
		t.WorkingDirectory,
		t.AssignedTo,
		string(t.AssistantMode),
		t.Notes,
		t.Output,
		t.RelatedFiles,
		t.Tags,
		nullableTimeToString(t.DueDate, dateLayout),
		nullableTimeToString(t.CompletedAt, time.RFC3339),
		nullableFloat(t.EstimatedHours),
		nullableFloat(t.ActualHours),
		t.PlanHTML,
		t.PlanStructure,
		nullableTimeToString(t.PlanCreatedAt, time.RFC3339),
		boolToInt(t.PlanningMode),
		t.Version,
		history,
		nullableID(t.ParentID),
		t.ContinuationCount,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading todo id: %w", err)
	}
	t.ID = id
	return nil
}

func (r *SQLiteTodoRepo) GetByID(ctx context.Context, id int64) (*domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = ?`
	t, err := scanTodo(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	return t, err
}

// buildWhere turns a filter into a WHERE clause and its arguments.
func buildWhere(f ListFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Scope != "" {
		conds = append(conds, "scope = ?")
		args = append(args, string(f.Scope))
	}
	if f.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, string(f.Priority))
	}
	if f.AssignedTo != "" {
		conds = append(conds, "assigned_to = ?")
		args = append(args, f.AssignedTo)
	}
	if f.WorkingDirectory != "" {
		conds = append(conds, "working_directory = ?")
		args = append(args, f.WorkingDirectory)
	}
	if f.ParentID != nil {
		conds = append(conds, "parent_todo_id = ?")
		args = append(args, *f.ParentID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		conds = append(conds, "(title LIKE ? OR description LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *SQLiteTodoRepo) List(ctx context.Context, f ListFilter) ([]*domain.Todo, error) {
	where, args := buildWhere(f)

	order, ok := orderColumns[f.OrderBy]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported order %q", domain.ErrValidation, f.OrderBy)
	}
	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}

	query := `SELECT ` + todoColumns + ` FROM todos` + where +
		` ORDER BY ` + order + ` ` + dir + `, id ` + dir
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	defer rows.Close()
	return scanTodos(rows)
}

func (r *SQLiteTodoRepo) Count(ctx context.Context, f ListFilter) (int, error) {
	where, args := buildWhere(f)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting todos: %w", err)
	}
	return n, nil
}

func (r *SQLiteTodoRepo) Update(ctx context.Context, t *domain.Todo) error {
	history, err := encodeVersionHistory(t.VersionHistory)
	if err != nil {
		return err
	}
	query := `UPDATE todos SET title = ?, description = ?, scope = ?, status = ?, priority = ?,
		working_directory = ?, assigned_to = ?, assistant_mode = ?,
		assistant_notes = ?, assistant_output = ?, related_files = ?, tags = ?,
		due_date = ?, completed_at = ?, estimated_hours = ?, actual_hours = ?,
		plan_html = ?, plan_structure = ?, plan_created_at = ?, is_planning_mode = ?,
		version = ?, version_history = ?, parent_todo_id = ?, continuation_count = ?,
		updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.Title,
		t.Description,
		string(t.Scope),
		string(t.Status),
		string(t.Priority),
		t.WorkingDirectory,
		t.AssignedTo,
		string(t.AssistantMode),
		t.Notes,
		t.Output,
		t.RelatedFiles,
		t.Tags,
		nullableTimeToString(t.DueDate, dateLayout),
		nullableTimeToString(t.CompletedAt, time.RFC3339),
		nullableFloat(t.EstimatedHours),
		nullableFloat(t.ActualHours),
		t.PlanHTML,
		t.PlanStructure,
		nullableTimeToString(t.PlanCreatedAt, time.RFC3339),
		boolToInt(t.PlanningMode),
		t.Version,
		history,
		nullableID(t.ParentID),
		t.ContinuationCount,
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating todo: %w", err)
	}
	return requireAffected(res, "todo", t.ID)
}

func (r *SQLiteTodoRepo) UpdateStatus(ctx context.Context, id int64, status domain.Status, completedAt *time.Time) error {
	query := `UPDATE todos SET status = ?, completed_at = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(status), nullableTimeToString(completedAt, time.RFC3339), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating todo status: %w", err)
	}
	return requireAffected(res, "todo", id)
}

// UpdatePlan stores a plan document and its structured backup and stamps
// the plan time.
func (r *SQLiteTodoRepo) UpdatePlan(ctx context.Context, id int64, html, structureJSON string, planning bool) error {
	now := nowUTC()
	query := `UPDATE todos SET plan_html = ?, plan_structure = ?, plan_created_at = ?,
		is_planning_mode = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, html, structureJSON, now, boolToInt(planning), now, id)
	if err != nil {
		return fmt.Errorf("updating todo plan: %w", err)
	}
	return requireAffected(res, "todo", id)
}

// AppendOutput adds a block of assistant output, separated from earlier
// output by a blank line.
func (r *SQLiteTodoRepo) AppendOutput(ctx context.Context, id int64, output string) error {
	query := `UPDATE todos SET
		assistant_output = CASE WHEN assistant_output = '' THEN ? ELSE assistant_output || char(10) || char(10) || ? END,
		updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, output, output, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("appending todo output: %w", err)
	}
	return requireAffected(res, "todo", id)
}

func (r *SQLiteTodoRepo) IncrementContinuations(ctx context.Context, id int64) error {
	query := `UPDATE todos SET continuation_count = continuation_count + 1, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("incrementing continuation count: %w", err)
	}
	return requireAffected(res, "todo", id)
}

// NextPending returns the pending todo the assignee should work on next:
// highest priority first, oldest first within a priority.
func (r *SQLiteTodoRepo) NextPending(ctx context.Context, assignee string) (*domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos
		WHERE status = 'pending' AND assigned_to = ?
		ORDER BY ` + priorityRankSQL + ` DESC, created_at ASC, id ASC
		LIMIT 1`
	t, err := scanTodo(r.db.QueryRowContext(ctx, query, assignee))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pending todo for %s: %w", assignee, ErrNotFound)
	}
	return t, err
}

func (r *SQLiteTodoRepo) Stats(ctx context.Context, today time.Time) (*domain.Stats, error) {
	stats := &domain.Stats{
		ByStatus:   map[domain.Status]int{},
		ByScope:    map[domain.Scope]int{},
		ByPriority: map[domain.Priority]int{},
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("counting todos: %w", err)
	}
	overdue := `SELECT COUNT(*) FROM todos
		WHERE due_date IS NOT NULL AND due_date < ?
		  AND status IN ('pending', 'in_progress', 'blocked')`
	if err := r.db.QueryRowContext(ctx, overdue, today.Format(dateLayout)).Scan(&stats.Overdue); err != nil {
		return nil, fmt.Errorf("counting overdue todos: %w", err)
	}

	groups := []struct {
		column string
		add    func(key string, n int)
	}{
		{"status", func(k string, n int) { stats.ByStatus[domain.Status(k)] = n }},
		{"scope", func(k string, n int) { stats.ByScope[domain.Scope(k)] = n }},
		{"priority", func(k string, n int) { stats.ByPriority[domain.Priority(k)] = n }},
	}
	for _, g := range groups {
		if err := r.countBy(ctx, g.column, g.add); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (r *SQLiteTodoRepo) countBy(ctx context.Context, column string, add func(string, int)) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM todos GROUP BY `+column)
	if err != nil {
		return fmt.Errorf("counting todos by %s: %w", column, err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scanning %s count: %w", column, err)
		}
		add(key, n)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s counts: %w", column, err)
	}
	return nil
}

func (r *SQLiteTodoRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	return requireAffected(res, "todo", id)
}

func requireAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}

func encodeVersionHistory(entries []domain.VersionEntry) (string, error) {
	if len(entries) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encoding version history: %w", err)
	}
	return string(data), nil
}

// scanTodo scans a single todo. sql.ErrNoRows is returned unwrapped so
// callers can turn it into ErrNotFound.
func scanTodo(row rowScanner) (*domain.Todo, error) {
	var t domain.Todo
	var scope, status, priority, mode string
	var dueDate, completedAt, planCreatedAt sql.NullString
	var estimated, actual sql.NullFloat64
	var planning int
	var history string
	var parentID sql.NullInt64
	var createdAt, updatedAt string

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &scope, &status, &priority,
		&t.WorkingDirectory, &t.AssignedTo, &mode,
		&t.Notes, &t.Output, &t.RelatedFiles, &t.Tags,
		&dueDate, &completedAt, &estimated, &actual,
		&t.PlanHTML, &t.PlanStructure, &planCreatedAt, &planning,
		&t.Version, &history, &parentID, &t.ContinuationCount,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning todo: %w", err)
	}

	t.Scope = domain.Scope(scope)
	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	t.AssistantMode = domain.AssistantMode(mode)
	t.DueDate = parseNullableTime(dueDate, dateLayout)
	t.CompletedAt = parseNullableTime(completedAt, time.RFC3339)
	t.PlanCreatedAt = parseNullableTime(planCreatedAt, time.RFC3339)
	t.EstimatedHours = floatPtr(estimated)
	t.ActualHours = floatPtr(actual)
	t.PlanningMode = intToBool(planning)
	t.ParentID = idPtr(parentID)

	if strings.TrimSpace(history) != "" {
		if err := json.Unmarshal([]byte(history), &t.VersionHistory); err != nil {
			return nil, fmt.Errorf("decoding version history of todo %d: %w", t.ID, err)
		}
	}

	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}

func scanTodos(rows *sql.Rows) ([]*domain.Todo, error) {
	var todos []*domain.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating todos: %w", err)
	}
	return todos, nil
}
