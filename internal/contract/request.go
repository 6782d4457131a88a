package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskdeck/internal/domain"
)

// DateLayout is the format of due dates on the wire.
const DateLayout = "2006-01-02"

// TodoInput carries the editable fields of a todo. Empty enum fields keep
// their current value.
type TodoInput struct {
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Scope            domain.Scope         `json:"scope"`
	Status           domain.Status        `json:"status"`
	Priority         domain.Priority      `json:"priority"`
	WorkingDirectory string               `json:"working_directory"`
	AssignedTo       string               `json:"assigned_to"`
	AssistantMode    domain.AssistantMode `json:"assistant_mode"`
	RelatedFiles     string               `json:"related_files"`
	Tags             string               `json:"tags"`
	DueDate          string               `json:"due_date"`
	EstimatedHours   *float64             `json:"estimated_hours"`
}

// Apply copies the input onto t.
func (in TodoInput) Apply(t *domain.Todo) error {
	t.Title = strings.TrimSpace(in.Title)
	t.Description = in.Description
	t.WorkingDirectory = strings.TrimSpace(in.WorkingDirectory)
	t.RelatedFiles = in.RelatedFiles
	t.Tags = in.Tags
	t.EstimatedHours = in.EstimatedHours
	if in.Scope != "" {
		t.Scope = in.Scope
	}
	if in.Status != "" {
		t.Status = in.Status
	}
	if in.Priority != "" {
		t.Priority = in.Priority
	}
	if a := strings.TrimSpace(in.AssignedTo); a != "" {
		t.AssignedTo = a
	}
	if in.AssistantMode != "" {
		t.AssistantMode = in.AssistantMode
	}

	t.DueDate = nil
	if d := strings.TrimSpace(in.DueDate); d != "" {
		due, err := time.Parse(DateLayout, d)
		if err != nil {
			return fmt.Errorf("%w: due date %q is not YYYY-MM-DD", domain.ErrValidation, d)
		}
		t.DueDate = &due
	}
	return nil
}

// FromTodoInput builds the input that reproduces t's editable fields.
func FromTodoInput(t *domain.Todo) TodoInput {
	in := TodoInput{
		Title:            t.Title,
		Description:      t.Description,
		Scope:            t.Scope,
		Status:           t.Status,
		Priority:         t.Priority,
		WorkingDirectory: t.WorkingDirectory,
		AssignedTo:       t.AssignedTo,
		AssistantMode:    t.AssistantMode,
		RelatedFiles:     t.RelatedFiles,
		Tags:             t.Tags,
		EstimatedHours:   t.EstimatedHours,
	}
	if t.DueDate != nil {
		in.DueDate = t.DueDate.Format(DateLayout)
	}
	return in
}

type StatusRequest struct {
	Status domain.Status `json:"status"`
}

type QuickEditRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type BulkRequest struct {
	Action domain.BulkAction `json:"action"`
	IDs    []int64           `json:"ids"`
}

type OutputRequest struct {
	Output string `json:"output"`
}

type CommentRequest struct {
	Body          string `json:"comment"`
	FromAssistant bool   `json:"from_assistant"`
}

type SendRequest struct {
	Command string `json:"command"`
}

type DeleteScreenshotRequest struct {
	Path string `json:"filepath"`
}
