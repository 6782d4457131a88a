package contract

import (
	"time"

	"github.com/alexanderramin/taskdeck/internal/domain"
)

// Todo is the wire form of a todo.
type Todo struct {
	ID                int64                 `json:"id"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Scope             domain.Scope          `json:"scope"`
	Status            domain.Status         `json:"status"`
	Priority          domain.Priority       `json:"priority"`
	WorkingDirectory  string                `json:"working_directory"`
	AssignedTo        string                `json:"assigned_to"`
	AssistantMode     domain.AssistantMode  `json:"assistant_mode"`
	Notes             string                `json:"assistant_notes,omitempty"`
	Output            string                `json:"assistant_output,omitempty"`
	RelatedFiles      string                `json:"related_files,omitempty"`
	Tags              string                `json:"tags,omitempty"`
	DueDate           string                `json:"due_date,omitempty"`
	CompletedAt       *time.Time            `json:"completed_at,omitempty"`
	EstimatedHours    *float64              `json:"estimated_hours,omitempty"`
	ActualHours       *float64              `json:"actual_hours,omitempty"`
	HasPlan           bool                  `json:"has_plan"`
	PlanCreatedAt     *time.Time            `json:"plan_created_at,omitempty"`
	PlanningMode      bool                  `json:"is_planning_mode"`
	Version           string                `json:"version"`
	VersionHistory    []domain.VersionEntry `json:"version_history,omitempty"`
	ParentID          *int64                `json:"parent_todo_id,omitempty"`
	ContinuationCount int                   `json:"continuation_count"`
	Overdue           bool                  `json:"overdue"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// FromTodo converts t for output. The plan document itself is served by the
// plan endpoints.
func FromTodo(t *domain.Todo, now time.Time) Todo {
	out := Todo{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Scope:             t.Scope,
		Status:            t.Status,
		Priority:          t.Priority,
		WorkingDirectory:  t.WorkingDirectory,
		AssignedTo:        t.AssignedTo,
		AssistantMode:     t.AssistantMode,
		Notes:             t.Notes,
		Output:            t.Output,
		RelatedFiles:      t.RelatedFiles,
		Tags:              t.Tags,
		CompletedAt:       t.CompletedAt,
		EstimatedHours:    t.EstimatedHours,
		ActualHours:       t.ActualHours,
		HasPlan:           t.HasPlan(),
		PlanCreatedAt:     t.PlanCreatedAt,
		PlanningMode:      t.PlanningMode,
		Version:           t.Version,
		VersionHistory:    t.VersionHistory,
		ParentID:          t.ParentID,
		ContinuationCount: t.ContinuationCount,
		Overdue:           t.IsOverdue(now),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	if t.DueDate != nil {
		out.DueDate = t.DueDate.Format(DateLayout)
	}
	return out
}

func FromTodos(todos []*domain.Todo, now time.Time) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		out = append(out, FromTodo(t, now))
	}
	return out
}
