package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation marks input that a todo cannot accept.
var ErrValidation = errors.New("validation failed")

type Todo struct {
	ID               int64
	Title            string
	Description      string
	Scope            Scope
	Status           Status
	Priority         Priority
	WorkingDirectory string
	AssignedTo       string
	AssistantMode    AssistantMode

	// Assistant exchange
	Notes        string
	Output       string
	RelatedFiles string
	Tags         string

	// Schedule
	DueDate        *time.Time
	CompletedAt    *time.Time
	EstimatedHours *float64
	ActualHours    *float64

	// Plan
	PlanHTML      string
	PlanStructure string
	PlanCreatedAt *time.Time
	PlanningMode  bool

	// Versioning
	Version           string
	VersionHistory    []VersionEntry
	ParentID          *int64
	ContinuationCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// VersionEntry is a snapshot of an earlier version of a continued todo.
type VersionEntry struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Prompt    string    `json:"prompt"`
	Output    string    `json:"output"`
	Status    Status    `json:"status"`
}

// Validate checks the fields a stored todo must always satisfy.
func (t *Todo) Validate() error {
	var problems []string
	if strings.TrimSpace(t.Title) == "" {
		problems = append(problems, "title is required")
	}
	if !t.Status.Valid() {
		problems = append(problems, fmt.Sprintf("invalid status %q", t.Status))
	}
	if !t.Priority.Valid() {
		problems = append(problems, fmt.Sprintf("invalid priority %q", t.Priority))
	}
	if !t.Scope.Valid() {
		problems = append(problems, fmt.Sprintf("invalid scope %q", t.Scope))
	}
	if t.AssistantMode != "" && !t.AssistantMode.Valid() {
		problems = append(problems, fmt.Sprintf("invalid assistant mode %q", t.AssistantMode))
	}
	if t.EstimatedHours != nil && *t.EstimatedHours < 0 {
		problems = append(problems, "estimated hours must not be negative")
	}
	if t.ActualHours != nil && *t.ActualHours < 0 {
		problems = append(problems, "actual hours must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// Snapshot captures the todo as a history entry for its successor.
func (t *Todo) Snapshot() VersionEntry {
	return VersionEntry{
		Version:   t.Version,
		CreatedAt: t.CreatedAt,
		Title:     t.Title,
		Prompt:    t.Description,
		Output:    t.Output,
		Status:    t.Status,
	}
}

// HasPlan reports whether a plan document is stored.
func (t *Todo) HasPlan() bool {
	return strings.TrimSpace(t.PlanHTML) != ""
}

// IsOverdue reports whether an open todo is past its due date.
func (t *Todo) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.Status.IsOpen() && t.DueDate.Before(now)
}

// SetStatus moves the todo to status through the lifecycle machine.
// Completing stamps CompletedAt; leaving completed clears it.
func (t *Todo) SetStatus(status Status, now time.Time) error {
	if err := Transition(t.Status, status); err != nil {
		return err
	}
	if t.Status == status {
		return nil
	}
	t.Status = status
	if status == StatusCompleted {
		done := now
		t.CompletedAt = &done
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
	return nil
}
