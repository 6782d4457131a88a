package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/taskdeck/internal/db"
	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/repository"
	"github.com/alexanderramin/taskdeck/internal/version"
)

// QuickEditFields lists the fields QuickEdit accepts.
var QuickEditFields = []string{"title", "status", "priority", "scope", "working_directory"}

type todoService struct {
	todos         repository.TodoRepo
	comments      repository.CommentRepo
	history       repository.HistoryRepo
	uow           db.UnitOfWork
	attachmentDir string
	observer      UseCaseObserver
}

func NewTodoService(
	todos repository.TodoRepo,
	comments repository.CommentRepo,
	history repository.HistoryRepo,
	uow db.UnitOfWork,
	attachmentDir string,
	observers ...UseCaseObserver,
) TodoService {
	return &todoService{
		todos:         todos,
		comments:      comments,
		history:       history,
		uow:           uow,
		attachmentDir: attachmentDir,
		observer:      useCaseObserverOrNoop(observers),
	}
}

// applyDefaults fills the fields a new todo may omit.
func applyDefaults(t *domain.Todo, now time.Time) {
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	if t.Scope == "" {
		t.Scope = domain.ScopeOther
	}
	if t.AssignedTo == "" {
		t.AssignedTo = domain.AssigneeAssistant
	}
	if t.AssistantMode == "" {
		t.AssistantMode = domain.ModeBypass
	}
	if strings.TrimSpace(t.Version) == "" {
		t.Version = version.Initial.String()
	}
	t.Title = strings.TrimSpace(t.Title)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Status == domain.StatusCompleted && t.CompletedAt == nil {
		done := now
		t.CompletedAt = &done
	}
}

func (s *todoService) Create(ctx context.Context, t *domain.Todo) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"title": t.Title}
	defer func() {
		fields["id"] = t.ID
		report(ctx, s.observer, "create-todo", startedAt, fields, err)
	}()

	applyDefaults(t, startedAt)
	if err = t.Validate(); err != nil {
		return err
	}
	return s.todos.Create(ctx, t)
}

func (s *todoService) Get(ctx context.Context, id int64) (*domain.Todo, error) {
	return s.todos.GetByID(ctx, id)
}

func (s *todoService) List(ctx context.Context, f repository.ListFilter) ([]*domain.Todo, error) {
	return s.todos.List(ctx, f)
}

// Update saves the editable fields of t. Plan, version and assistant output
// fields are owned by other use cases and keep their stored values.
func (s *todoService) Update(ctx context.Context, t *domain.Todo) error {
	now := time.Now().UTC()
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTodos := repository.NewSQLiteTodoRepo(tx)
		txHistory := repository.NewSQLiteHistoryRepo(tx)

		before, err := txTodos.GetByID(ctx, t.ID)
		if err != nil {
			return err
		}
		if err := domain.Transition(before.Status, t.Status); err != nil {
			return err
		}

		t.Title = strings.TrimSpace(t.Title)
		t.Output = before.Output
		t.PlanHTML = before.PlanHTML
		t.PlanStructure = before.PlanStructure
		t.PlanCreatedAt = before.PlanCreatedAt
		t.PlanningMode = before.PlanningMode
		t.Version = before.Version
		t.VersionHistory = before.VersionHistory
		t.ParentID = before.ParentID
		t.ContinuationCount = before.ContinuationCount
		t.CreatedAt = before.CreatedAt
		t.CompletedAt = before.CompletedAt
		if t.Status != before.Status {
			if t.Status == domain.StatusCompleted {
				t.CompletedAt = &now
			} else {
				t.CompletedAt = nil
			}
		}
		t.UpdatedAt = now

		if err := t.Validate(); err != nil {
			return err
		}
		if err := txTodos.Update(ctx, t); err != nil {
			return err
		}
		_, err = recordChanges(ctx, txHistory, before, t, now)
		return err
	})
}

func (s *todoService) QuickEdit(ctx context.Context, id int64, field, value string) (*domain.Todo, error) {
	if field == "status" {
		return s.SetStatus(ctx, id, domain.Status(value))
	}

	var updated *domain.Todo
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTodos := repository.NewSQLiteTodoRepo(tx)
		t, err := txTodos.GetByID(ctx, id)
		if err != nil {
			return err
		}
		before := *t

		value = strings.TrimSpace(value)
		switch field {
		case "title":
			t.Title = value
		case "priority":
			t.Priority = domain.Priority(value)
		case "scope":
			t.Scope = domain.Scope(value)
		case "working_directory":
			t.WorkingDirectory = value
		default:
			return fmt.Errorf("%w: field %q cannot be quick-edited", domain.ErrValidation, field)
		}
		if err := t.Validate(); err != nil {
			return err
		}

		now := time.Now().UTC()
		t.UpdatedAt = now
		if err := txTodos.Update(ctx, t); err != nil {
			return err
		}
		if _, err := recordChanges(ctx, repository.NewSQLiteHistoryRepo(tx), &before, t, now); err != nil {
			return err
		}
		updated = t
		return nil
	})
	return updated, err
}

func (s *todoService) SetStatus(ctx context.Context, id int64, status domain.Status) (*domain.Todo, error) {
	var updated *domain.Todo
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		t, err := setStatusTx(ctx, tx, id, status, time.Now().UTC())
		updated = t
		return err
	})
	return updated, err
}

// setStatusTx moves one todo through the lifecycle machine and records the
// change.
func setStatusTx(ctx context.Context, tx db.DBTX, id int64, status domain.Status, now time.Time) (*domain.Todo, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", domain.ErrValidation, status)
	}
	txTodos := repository.NewSQLiteTodoRepo(tx)
	t, err := txTodos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := t.Status
	if err := t.SetStatus(status, now); err != nil {
		return nil, err
	}
	if old == status {
		return t, nil
	}
	if err := txTodos.UpdateStatus(ctx, id, status, t.CompletedAt); err != nil {
		return nil, err
	}
	if err := recordChange(ctx, repository.NewSQLiteHistoryRepo(tx), id, "status", string(old), string(status), now); err != nil {
		return nil, err
	}
	return t, nil
}

var bulkTargets = map[domain.BulkAction]domain.Status{
	domain.BulkComplete: domain.StatusCompleted,
	domain.BulkReset:    domain.StatusPending,
	domain.BulkBlock:    domain.StatusBlocked,
}

func (s *todoService) Bulk(ctx context.Context, action domain.BulkAction, ids []int64) (result *BulkResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"action": string(action), "requested": len(ids)}
	defer func() {
		if result != nil {
			fields["affected"] = len(result.Affected)
		}
		report(ctx, s.observer, "bulk-todos", startedAt, fields, err)
	}()

	if !action.Valid() {
		return nil, fmt.Errorf("%w: unknown bulk action %q", domain.ErrValidation, action)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no todos selected", domain.ErrValidation)
	}

	res := &BulkResult{Action: action, Affected: []int64{}, Skipped: []int64{}}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		for _, id := range ids {
			var opErr error
			if action == domain.BulkDelete {
				opErr = repository.NewSQLiteTodoRepo(tx).Delete(ctx, id)
			} else {
				_, opErr = setStatusTx(ctx, tx, id, bulkTargets[action], startedAt)
			}
			switch {
			case opErr == nil:
				res.Affected = append(res.Affected, id)
			case errors.Is(opErr, repository.ErrNotFound), errors.Is(opErr, domain.ErrInvalidTransition):
				res.Skipped = append(res.Skipped, id)
			default:
				return opErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if action == domain.BulkDelete {
		for _, id := range res.Affected {
			s.removeAttachmentDir(id)
		}
	}
	return res, nil
}

func (s *todoService) Delete(ctx context.Context, id int64) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		report(ctx, s.observer, "delete-todo", startedAt, map[string]any{"id": id}, err)
	}()

	if err = s.todos.Delete(ctx, id); err != nil {
		return err
	}
	s.removeAttachmentDir(id)
	return nil
}

// removeAttachmentDir deletes the files of a deleted todo. Their rows are
// removed by the foreign key cascade.
func (s *todoService) removeAttachmentDir(id int64) {
	if s.attachmentDir == "" {
		return
	}
	_ = os.RemoveAll(filepath.Join(s.attachmentDir, strconv.FormatInt(id, 10)))
}

// NextForAssistant claims the assistant's next pending todo and marks it in
// progress.
func (s *todoService) NextForAssistant(ctx context.Context) (claimed *domain.Todo, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		if claimed != nil {
			fields["id"] = claimed.ID
		}
		report(ctx, s.observer, "next-todo", startedAt, fields, err)
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		next, err := repository.NewSQLiteTodoRepo(tx).NextPending(ctx, domain.AssigneeAssistant)
		if err != nil {
			return err
		}
		t, err := setStatusTx(ctx, tx, next.ID, domain.StatusInProgress, startedAt)
		if err != nil {
			return err
		}
		claimed = t
		return repository.NewSQLiteCommentRepo(tx).Add(ctx, &domain.Comment{
			TodoID:      t.ID,
			Body:        fmt.Sprintf("Picked up by %s (version %s)", domain.AssigneeAssistant, t.Version),
			IsAssistant: true,
			CreatedAt:   startedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (s *todoService) AppendOutput(ctx context.Context, id int64, output string) error {
	output = strings.TrimSpace(output)
	if output == "" {
		return fmt.Errorf("%w: output is empty", domain.ErrValidation)
	}
	return s.todos.AppendOutput(ctx, id, output)
}

// Complete closes a todo with the assistant's final notes and output.
func (s *todoService) Complete(ctx context.Context, id int64, req CompleteRequest) (done *domain.Todo, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		report(ctx, s.observer, "complete-todo", startedAt, map[string]any{"id": id}, err)
	}()

	if req.ActualHours != nil && *req.ActualHours < 0 {
		return nil, fmt.Errorf("%w: actual hours must not be negative", domain.ErrValidation)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTodos := repository.NewSQLiteTodoRepo(tx)
		t, err := txTodos.GetByID(ctx, id)
		if err != nil {
			return err
		}
		before := *t
		if err := t.SetStatus(domain.StatusCompleted, startedAt); err != nil {
			return err
		}
		if notes := strings.TrimSpace(req.Notes); notes != "" {
			t.Notes = appendBlock(t.Notes, fmt.Sprintf("[%s] %s", startedAt.Format("2006-01-02 15:04:05"), notes))
		}
		if out := strings.TrimSpace(req.Output); out != "" {
			t.Output = appendBlock(t.Output, out)
		}
		if req.ActualHours != nil {
			t.ActualHours = req.ActualHours
		}
		t.UpdatedAt = startedAt
		if err := txTodos.Update(ctx, t); err != nil {
			return err
		}
		if _, err := recordChanges(ctx, repository.NewSQLiteHistoryRepo(tx), &before, t, startedAt); err != nil {
			return err
		}
		done = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return done, nil
}

func (s *todoService) Comment(ctx context.Context, id int64, body string, fromAssistant bool) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment is empty", domain.ErrValidation)
	}
	if _, err := s.todos.GetByID(ctx, id); err != nil {
		return nil, err
	}
	c := &domain.Comment{TodoID: id, Body: body, IsAssistant: fromAssistant, CreatedAt: time.Now().UTC()}
	if err := s.comments.Add(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *todoService) Comments(ctx context.Context, id int64) ([]*domain.Comment, error) {
	return s.comments.ListByTodo(ctx, id)
}

func (s *todoService) History(ctx context.Context, id int64) ([]*domain.HistoryEntry, error) {
	return s.history.ListByTodo(ctx, id)
}

func (s *todoService) Stats(ctx context.Context) (*domain.Stats, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.todos.Stats(ctx, today)
}

// appendBlock joins text blocks with a blank line.
func appendBlock(existing, block string) string {
	if strings.TrimSpace(existing) == "" {
		return block
	}
	return existing + "\n\n" + block
}
