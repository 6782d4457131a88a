package testutil

import (
	"time"

	"github.com/alexanderramin/taskdeck/internal/domain"
)

// TodoOption customises a fixture todo.
type TodoOption func(*domain.Todo)

func WithStatus(s domain.Status) TodoOption {
	return func(t *domain.Todo) {
		t.Status = s
	}
}

func WithPriority(p domain.Priority) TodoOption {
	return func(t *domain.Todo) {
		t.Priority = p
	}
}

func WithScope(s domain.Scope) TodoOption {
	return func(t *domain.Todo) {
		t.Scope = s
	}
}

func WithAssignee(a string) TodoOption {
	return func(t *domain.Todo) {
		t.AssignedTo = a
	}
}

func WithWorkingDirectory(dir string) TodoOption {
	return func(t *domain.Todo) {
		t.WorkingDirectory = dir
	}
}

func WithDescription(d string) TodoOption {
	return func(t *domain.Todo) {
		t.Description = d
	}
}

func WithVersion(v string) TodoOption {
	return func(t *domain.Todo) {
		t.Version = v
	}
}

func WithPlanHTML(html string) TodoOption {
	return func(t *domain.Todo) {
		t.PlanHTML = html
	}
}

func WithDueDate(d time.Time) TodoOption {
	return func(t *domain.Todo) {
		t.DueDate = &d
	}
}

func WithCreatedAt(at time.Time) TodoOption {
	return func(t *domain.Todo) {
		t.CreatedAt = at
		t.UpdatedAt = at
	}
}

func NewTestTodo(title string, opts ...TodoOption) *domain.Todo {
	now := time.Now().UTC().Truncate(time.Second)
	t := &domain.Todo{
		Title:         title,
		Scope:         domain.ScopeOther,
		Status:        domain.StatusPending,
		Priority:      domain.PriorityMedium,
		AssignedTo:    domain.AssigneeAssistant,
		AssistantMode: domain.ModeBypass,
		Version:       "1.00",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
