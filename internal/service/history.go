package service

import (
	"context"
	"strconv"
	"time"

	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/repository"
)

// trackedField reads one user-visible field of a todo as text.
type trackedField struct {
	name string
	get  func(*domain.Todo) string
}

var trackedFields = []trackedField{
	{"title", func(t *domain.Todo) string { return t.Title }},
	{"description", func(t *domain.Todo) string { return t.Description }},
	{"status", func(t *domain.Todo) string { return string(t.Status) }},
	{"priority", func(t *domain.Todo) string { return string(t.Priority) }},
	{"scope", func(t *domain.Todo) string { return string(t.Scope) }},
	{"working_directory", func(t *domain.Todo) string { return t.WorkingDirectory }},
	{"assigned_to", func(t *domain.Todo) string { return t.AssignedTo }},
	{"assistant_mode", func(t *domain.Todo) string { return string(t.AssistantMode) }},
	{"related_files", func(t *domain.Todo) string { return t.RelatedFiles }},
	{"tags", func(t *domain.Todo) string { return t.Tags }},
	{"due_date", func(t *domain.Todo) string { return formatDate(t.DueDate) }},
	{"estimated_hours", func(t *domain.Todo) string { return formatHours(t.EstimatedHours) }},
	{"actual_hours", func(t *domain.Todo) string { return formatHours(t.ActualHours) }},
}

// recordChanges writes one history entry per tracked field that differs.
func recordChanges(ctx context.Context, history repository.HistoryRepo, before, after *domain.Todo, now time.Time) (int, error) {
	n := 0
	for _, f := range trackedFields {
		old, cur := f.get(before), f.get(after)
		if old == cur {
			continue
		}
		if err := recordChange(ctx, history, after.ID, f.name, old, cur, now); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func recordChange(ctx context.Context, history repository.HistoryRepo, todoID int64, field, old, cur string, now time.Time) error {
	return history.Add(ctx, &domain.HistoryEntry{
		TodoID:    todoID,
		Field:     field,
		OldValue:  old,
		NewValue:  cur,
		ChangedAt: now,
	})
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatHours(h *float64) string {
	if h == nil {
		return ""
	}
	return strconv.FormatFloat(*h, 'f', -1, 64)
}
