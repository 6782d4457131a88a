package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/taskdeck/internal/db"
	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/plan"
	"github.com/alexanderramin/taskdeck/internal/repository"
)

type planService struct {
	todos    repository.TodoRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewPlanService(todos repository.TodoRepo, uow db.UnitOfWork, observers ...UseCaseObserver) PlanService {
	return &planService{todos: todos, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// storedStructure recovers the structure of a todo's plan. The document is
// authoritative; the JSON backup is used only when the document yields
// nothing.
func storedStructure(t *domain.Todo) plan.Structure {
	s := plan.Parse(t.PlanHTML)
	if !s.IsEmpty() || t.PlanStructure == "" {
		return s
	}
	var backup plan.Structure
	if err := json.Unmarshal([]byte(t.PlanStructure), &backup); err != nil {
		return s
	}
	backup.Normalize()
	return backup
}

func (s *planService) OpenEditor(ctx context.Context, id int64) (*PlanEditor, error) {
	t, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PlanEditor{
		TodoID:       t.ID,
		Structure:    storedStructure(t),
		HTML:         t.PlanHTML,
		PlanningMode: t.PlanningMode,
		SavedAt:      t.PlanCreatedAt,
	}, nil
}

func (s *planService) Preview(st plan.Structure) string {
	out := st.Clone()
	out.Normalize()
	return plan.RenderDocument(out)
}

// Save stores the payload's document, a structured backup of it and marks
// the todo as planned.
func (s *planService) Save(ctx context.Context, id int64, p plan.Payload) (saved *domain.Todo, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"id": id}
	defer func() {
		report(ctx, s.observer, "save-plan", startedAt, fields, err)
	}()

	if p == nil {
		return nil, plan.ErrUnknownMode
	}
	fields["mode"] = string(p.Mode())

	html, backup, err := plan.Resolve(p)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(backup)
	if err != nil {
		return nil, fmt.Errorf("encoding plan backup: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTodos := repository.NewSQLiteTodoRepo(tx)
		before, err := txTodos.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := txTodos.UpdatePlan(ctx, id, html, string(data), true); err != nil {
			return err
		}
		if before.PlanHTML != html {
			if err := recordChange(ctx, repository.NewSQLiteHistoryRepo(tx), id, "plan",
				planSummary(before.PlanHTML), planSummary(html), startedAt); err != nil {
				return err
			}
		}
		saved, err = txTodos.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// planSummary keeps history rows short: the plan title and its size.
func planSummary(doc string) string {
	if doc == "" {
		return ""
	}
	title := plan.Parse(doc).Title
	if title == "" {
		title = "untitled"
	}
	return fmt.Sprintf("%s (%d bytes)", title, len(doc))
}

func (s *planService) Export(ctx context.Context, id int64) (*PlanExport, error) {
	t, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	st := storedStructure(t)
	if st.Title == "" {
		st.Title = t.Title
	}
	now := time.Now().UTC()
	data, err := plan.Export(st, now)
	if err != nil {
		return nil, err
	}
	return &PlanExport{Filename: plan.ExportFilename(st, now), Data: data}, nil
}

// Edit applies fn to the stored structure and saves the result as a
// structured plan.
func (s *planService) Edit(ctx context.Context, id int64, fn func(*plan.Structure) error) (*domain.Todo, error) {
	t, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	st := storedStructure(t)
	if err := fn(&st); err != nil {
		return nil, err
	}
	return s.Save(ctx, id, plan.Structured{Structure: st})
}

// View returns the stored plan as a standalone page, markup untouched.
func (s *planService) View(ctx context.Context, id int64) (string, error) {
	t, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	title := plan.Parse(t.PlanHTML).Title
	if title == "" {
		title = t.Title
	}
	return plan.WrapDocument(title, t.PlanHTML), nil
}
