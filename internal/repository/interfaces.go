package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/taskdeck/internal/domain"
)

// ListFilter narrows and orders a todo listing. Zero values mean "any";
// results are newest first unless Ascending is set.
type ListFilter struct {
	Status           domain.Status
	Scope            domain.Scope
	Priority         domain.Priority
	AssignedTo       string
	WorkingDirectory string
	Search           string
	ParentID         *int64
	OrderBy          string
	Ascending        bool
	Limit            int
	Offset           int
}

type TodoRepo interface {
	Create(ctx context.Context, t *domain.Todo) error
	GetByID(ctx context.Context, id int64) (*domain.Todo, error)
	List(ctx context.Context, f ListFilter) ([]*domain.Todo, error)
	Count(ctx context.Context, f ListFilter) (int, error)
	Update(ctx context.Context, t *domain.Todo) error
	UpdateStatus(ctx context.Context, id int64, status domain.Status, completedAt *time.Time) error
	UpdatePlan(ctx context.Context, id int64, html, structureJSON string, planning bool) error
	AppendOutput(ctx context.Context, id int64, output string) error
	IncrementContinuations(ctx context.Context, id int64) error
	NextPending(ctx context.Context, assignee string) (*domain.Todo, error)
	Stats(ctx context.Context, today time.Time) (*domain.Stats, error)
	Delete(ctx context.Context, id int64) error
}

type HistoryRepo interface {
	Add(ctx context.Context, e *domain.HistoryEntry) error
	ListByTodo(ctx context.Context, todoID int64) ([]*domain.HistoryEntry, error)
}

type CommentRepo interface {
	Add(ctx context.Context, c *domain.Comment) error
	ListByTodo(ctx context.Context, todoID int64) ([]*domain.Comment, error)
}

type AttachmentRepo interface {
	Create(ctx context.Context, a *domain.Attachment) error
	GetByID(ctx context.Context, id int64) (*domain.Attachment, error)
	ListByTodo(ctx context.Context, todoID int64) ([]*domain.Attachment, error)
	Delete(ctx context.Context, id int64) error
}

type ContinuationRepo interface {
	Create(ctx context.Context, c *domain.Continuation) error
	ListByOriginal(ctx context.Context, originalID int64) ([]*domain.Continuation, error)
}
